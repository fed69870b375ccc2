package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aiquira/assetrisk/internal/fetcher"
	"github.com/aiquira/assetrisk/internal/model"
)

var (
	marketURL string
	marketOut string
)

var marketdataCmd = &cobra.Command{
	Use:   "marketdata",
	Short: "Fetch and apply market snapshot data",
}

var marketdataRefreshCmd = &cobra.Command{
	Use:   "refresh <records-dir>",
	Short: "Refresh record market sections from the published snapshot",
	Long: `Downloads the market snapshot workbook (HTTP, HTTPS, or FTP),
parses it, and rewrites each record whose property appears in the
snapshot with the fresh market section. Records are written to the
output directory as <id>.json.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		snapshotURL := marketURL
		if snapshotURL == "" {
			snapshotURL = cfg.MarketData.SnapshotURL
		}
		if snapshotURL == "" {
			return eris.New("marketdata: snapshot URL is required (ASSETRISK_MARKETDATA_SNAPSHOT_URL)")
		}

		records, err := model.LoadRecordDir(args[0])
		if err != nil {
			return err
		}

		httpf := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Timeout:      time.Duration(cfg.MarketData.TimeoutSecs) * time.Second,
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
		ftpf := fetcher.NewFTPFetcher(fetcher.FTPOptions{
			Timeout: time.Duration(cfg.MarketData.TimeoutSecs) * time.Second,
		})

		f, err := fetcher.ForURL(snapshotURL, httpf, ftpf)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.MarketData.TempDir, 0o755); err != nil {
			return eris.Wrap(err, "marketdata: create temp dir")
		}
		snapshotPath := filepath.Join(cfg.MarketData.TempDir, "snapshot.xlsx")

		n, err := f.DownloadToFile(ctx, snapshotURL, snapshotPath)
		if err != nil {
			return err
		}
		zap.L().Info("snapshot downloaded",
			zap.String("url", snapshotURL),
			zap.Int64("bytes", n),
		)

		rows, err := fetcher.ReadXLSX(snapshotPath, fetcher.XLSXOptions{SkipRows: 1})
		if err != nil {
			return err
		}

		snapshot, err := fetcher.ParseSnapshot(rows)
		if err != nil {
			return err
		}

		updated := fetcher.ApplySnapshot(records, snapshot)

		outDir := marketOut
		if outDir == "" {
			outDir = args[0]
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return eris.Wrap(err, "marketdata: create output dir")
		}

		for _, rec := range records {
			data, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return eris.Wrapf(err, "marketdata: marshal record %s", rec.ID)
			}
			path := filepath.Join(outDir, rec.ID+".json")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return eris.Wrapf(err, "marketdata: write record %s", rec.ID)
			}
		}

		zap.L().Info("market data refreshed",
			zap.Int("records", len(records)),
			zap.Int("updated", updated),
			zap.String("output", outDir),
		)
		return nil
	},
}

func init() {
	marketdataRefreshCmd.Flags().StringVar(&marketURL, "url", "", "snapshot URL (default from config)")
	marketdataRefreshCmd.Flags().StringVar(&marketOut, "out", "", "output directory (default: records dir)")

	marketdataCmd.AddCommand(marketdataRefreshCmd)
	rootCmd.AddCommand(marketdataCmd)
}
