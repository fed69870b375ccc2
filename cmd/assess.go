package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aiquira/assetrisk/internal/engine"
	"github.com/aiquira/assetrisk/internal/enrich"
	"github.com/aiquira/assetrisk/internal/model"
)

var (
	assessOutput string
	assessSave   bool
	assessReport bool
	assessDocs   string
)

var assessCmd = &cobra.Command{
	Use:   "assess <record-file-or-dir>",
	Short: "Score property records",
	Long: `Scores one record file (JSON or YAML), or every record file in a
directory. Directory runs are scored concurrently.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, err := initEngine()
		if err != nil {
			return err
		}

		locator, err := initLocator()
		if err != nil {
			return err
		}

		info, err := os.Stat(args[0])
		if err != nil {
			return eris.Wrapf(err, "assess: stat %s", args[0])
		}

		var records []*model.PropertyRecord
		if info.IsDir() {
			records, err = model.LoadRecordDir(args[0])
		} else {
			var rec *model.PropertyRecord
			rec, err = model.LoadRecord(args[0])
			records = []*model.PropertyRecord{rec}
		}
		if err != nil {
			return err
		}

		// Document-derived compliance signals only apply to single-record
		// runs; batch runs score records as given.
		if assessDocs != "" {
			if len(records) != 1 {
				return eris.New("assess: --docs requires a single record file")
			}
			signals, err := analyzeDocs(ctx, assessDocs)
			if err != nil {
				return err
			}
			records[0].Signals = append(records[0].Signals, signals...)
		}

		if locator != nil {
			for _, rec := range records {
				locator.EnrichRecord(rec)
			}
		}

		assessments, err := scoreAll(ctx, eng, records)
		if err != nil {
			return err
		}

		if assessSave {
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			for _, a := range assessments {
				if err := st.CreateAssessment(ctx, a); err != nil {
					return err
				}
			}
			zap.L().Info("assessments saved", zap.Int("count", len(assessments)))
		}

		if assessReport {
			for i, a := range assessments {
				fmt.Println(engine.RenderReport(records[i], a))
			}
			return nil
		}

		switch assessOutput {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if len(assessments) == 1 {
				return enc.Encode(assessments[0])
			}
			return enc.Encode(assessments)
		case "csv":
			return writeAssessmentCSV(os.Stdout, assessments)
		case "table":
			formatAssessmentTable(os.Stdout, assessments)
			return nil
		default:
			return eris.Errorf("assess: unknown output format %q", assessOutput)
		}
	},
}

// scoreAll runs the engine over all records, up to batch.max_concurrent
// at a time, and returns assessments in record order.
func scoreAll(ctx context.Context, eng *engine.Engine, records []*model.PropertyRecord) ([]*model.RiskAssessment, error) {
	out := make([]*model.RiskAssessment, len(records))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Batch.MaxConcurrent, 1))

	for i, rec := range records {
		g.Go(func() error {
			a, err := eng.ScoreProperty(rec)
			if err != nil {
				return eris.Wrapf(err, "assess %s", rec.ID)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// analyzeDocs reads every regular file in the directory as a text
// document and extracts compliance signals.
func analyzeDocs(ctx context.Context, dir string) ([]model.ComplianceSignal, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "assess: read docs dir %s", dir)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]enrich.Document, len(names))
	for i, name := range names {
		text, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, eris.Wrapf(err, "assess: read doc %s", name)
		}
		docs[i] = enrich.Document{Name: name, Text: string(text)}
	}

	return initAnalyzer().Analyze(ctx, docs)
}

func writeAssessmentCSV(w io.Writer, assessments []*model.RiskAssessment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"assessment_id", "property_id", "score", "level", "trend",
		"compliance", "issues", "recommendations", "assessed_at",
	}); err != nil {
		return eris.Wrap(err, "assess: write csv")
	}
	for _, a := range assessments {
		row := []string{
			a.ID, a.PropertyID,
			strconv.FormatFloat(a.Score, 'f', 2, 64),
			string(a.Level), string(a.MarketTrend.Direction),
			string(a.Compliance.Status),
			strconv.Itoa(len(a.Issues)), strconv.Itoa(len(a.Recommendations)),
			a.AssessedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "assess: write csv")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "assess: flush csv")
}

func formatAssessmentTable(w io.Writer, assessments []*model.RiskAssessment) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROPERTY\tSCORE\tLEVEL\tTREND\tCOMPLIANCE\tISSUES\tRECOMMENDATIONS")
	for _, a := range assessments {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\t%s\t%d\t%d\n",
			a.PropertyID, a.Score, a.Level, a.MarketTrend.Direction,
			a.Compliance.Status, len(a.Issues), len(a.Recommendations),
		)
	}
	tw.Flush()
}

func init() {
	assessCmd.Flags().StringVarP(&assessOutput, "output", "o", "table", "output format: table, json, or csv")
	assessCmd.Flags().BoolVar(&assessSave, "save", false, "persist assessments to the store")
	assessCmd.Flags().BoolVar(&assessReport, "report", false, "print a full text report per record")
	assessCmd.Flags().StringVar(&assessDocs, "docs", "", "directory of property documents to analyze for compliance signals")
	rootCmd.AddCommand(assessCmd)
}
