package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/aiquira/assetrisk/internal/model"
	"github.com/aiquira/assetrisk/internal/store"
	"github.com/aiquira/assetrisk/pkg/notion"
	sfpkg "github.com/aiquira/assetrisk/pkg/salesforce"
)

var (
	exportProperty string
	exportLevel    string
	exportLimit    int
	exportRecords  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored assessments to external systems",
}

// exportList loads the assessments selected by the export flags.
func exportList(ctx context.Context, st store.Store) ([]*model.RiskAssessment, error) {
	filter := store.AssessmentFilter{
		PropertyID: exportProperty,
		Level:      model.RiskLevel(exportLevel),
		Limit:      exportLimit,
	}
	switch filter.Level {
	case "", model.RiskLow, model.RiskMedium, model.RiskHigh:
	default:
		return nil, eris.Errorf("export: unknown risk level %q", exportLevel)
	}

	assessments, err := st.ListAssessments(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(assessments) == 0 {
		return nil, eris.New("export: no assessments match")
	}
	return assessments, nil
}

// loadRecordIndex maps property ID to record for the optional records
// directory, so exports can carry addresses.
func loadRecordIndex(dir string) (map[string]*model.PropertyRecord, error) {
	if dir == "" {
		return nil, nil
	}
	records, err := model.LoadRecordDir(dir)
	if err != nil {
		return nil, err
	}
	index := make(map[string]*model.PropertyRecord, len(records))
	for _, rec := range records {
		index[rec.ID] = rec
	}
	return index, nil
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx <output-file>",
	Short: "Write assessments to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		assessments, err := exportList(ctx, st)
		if err != nil {
			return err
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Assessments")
		if err != nil {
			return eris.Wrap(err, "export: add sheet")
		}

		header := sheet.AddRow()
		for _, name := range []string{
			"Assessment ID", "Property ID", "Score", "Level", "Trend",
			"Compliance", "Open Issues", "Recommendations", "Assessed At",
		} {
			header.AddCell().SetString(name)
		}

		for _, a := range assessments {
			openIssues := 0
			for _, issue := range a.Issues {
				if issue.Status == model.IssueOpen {
					openIssues++
				}
			}

			row := sheet.AddRow()
			row.AddCell().SetString(a.ID)
			row.AddCell().SetString(a.PropertyID)
			row.AddCell().SetFloat(a.Score)
			row.AddCell().SetString(string(a.Level))
			row.AddCell().SetString(string(a.MarketTrend.Direction))
			row.AddCell().SetString(string(a.Compliance.Status))
			row.AddCell().SetInt(openIssues)
			row.AddCell().SetInt(len(a.Recommendations))
			row.AddCell().SetString(a.AssessedAt.Format(time.RFC3339))
		}

		if err := file.Save(args[0]); err != nil {
			return eris.Wrapf(err, "export: save %s", args[0])
		}

		zap.L().Info("assessments exported",
			zap.String("file", args[0]),
			zap.Int("count", len(assessments)),
		)
		return nil
	},
}

var exportNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Publish assessments to the Notion review database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := initNotion()
		if err != nil {
			return err
		}

		index, err := loadRecordIndex(exportRecords)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		assessments, err := exportList(ctx, st)
		if err != nil {
			return err
		}

		for _, a := range assessments {
			pageID, err := notion.ExportAssessment(ctx, client, cfg.Notion.AssessmentDB, index[a.PropertyID], a)
			if err != nil {
				return err
			}
			zap.L().Info("assessment exported to notion",
				zap.String("assessment", a.ID),
				zap.String("page", pageID),
			)
		}
		return nil
	},
}

var exportSalesforceCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Upsert assessments into the Salesforce custom object",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := initSalesforce()
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		assessments, err := exportList(ctx, st)
		if err != nil {
			return err
		}

		for _, a := range assessments {
			recordID, err := sfpkg.UpsertAssessment(ctx, client, cfg.Salesforce.Object, a)
			if err != nil {
				return err
			}
			zap.L().Info("assessment exported to salesforce",
				zap.String("assessment", a.ID),
				zap.String("record", recordID),
			)
		}
		return nil
	},
}

func init() {
	exportCmd.PersistentFlags().StringVar(&exportProperty, "property", "", "filter by property ID")
	exportCmd.PersistentFlags().StringVar(&exportLevel, "level", "", "filter by risk level: low, medium, high")
	exportCmd.PersistentFlags().IntVar(&exportLimit, "limit", 0, "maximum assessments (default 100)")
	exportNotionCmd.Flags().StringVar(&exportRecords, "records", "", "record directory used to resolve property addresses")

	exportCmd.AddCommand(exportXLSXCmd)
	exportCmd.AddCommand(exportNotionCmd)
	exportCmd.AddCommand(exportSalesforceCmd)
	rootCmd.AddCommand(exportCmd)
}
