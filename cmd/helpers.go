package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/aiquira/assetrisk/internal/engine"
	"github.com/aiquira/assetrisk/internal/enrich"
	"github.com/aiquira/assetrisk/internal/geo"
	"github.com/aiquira/assetrisk/internal/store"
	"github.com/aiquira/assetrisk/pkg/anthropic"
	"github.com/aiquira/assetrisk/pkg/notion"
	sfpkg "github.com/aiquira/assetrisk/pkg/salesforce"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "assetrisk.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore opens the configured store and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func initEngine() (*engine.Engine, error) {
	return engine.New(cfg.Engine)
}

// initAnalyzer builds the document analyzer. Without an API key it
// falls back to the keyword scanner.
func initAnalyzer() *enrich.Analyzer {
	var client anthropic.Client
	if cfg.Enrich.AnthropicKey != "" {
		client = anthropic.NewClient(cfg.Enrich.AnthropicKey)
	}
	return enrich.NewAnalyzer(client, cfg.Enrich.Model, cfg.Enrich.MaxTokens)
}

// initLocator loads the flood-zone shapefile when one is configured.
// Returns nil when flood lookup is disabled.
func initLocator() (*geo.Locator, error) {
	if cfg.Geo.FloodZoneShapefile == "" {
		return nil, nil
	}
	zones, err := geo.LoadZones(cfg.Geo.FloodZoneShapefile)
	if err != nil {
		return nil, err
	}
	return geo.NewLocator(zones), nil
}

func initNotion() (notion.Client, error) {
	if cfg.Notion.Token == "" {
		return nil, eris.New("notion token is required (ASSETRISK_NOTION_TOKEN)")
	}
	if cfg.Notion.AssessmentDB == "" {
		return nil, eris.New("notion assessment database ID is required")
	}
	return notion.NewClient(cfg.Notion.Token), nil
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (ASSETRISK_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}
