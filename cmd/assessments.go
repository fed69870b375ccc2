package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/aiquira/assetrisk/internal/model"
	"github.com/aiquira/assetrisk/internal/monitoring"
	"github.com/aiquira/assetrisk/internal/store"
)

var (
	listProperty string
	listLevel    string
	listLimit    int
	listOffset   int

	issueStatus string
	recStatus   string
)

var assessmentsCmd = &cobra.Command{
	Use:   "assessments",
	Short: "Inspect and manage stored assessments",
}

var assessmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assessments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		filter := store.AssessmentFilter{
			PropertyID: listProperty,
			Level:      model.RiskLevel(listLevel),
			Limit:      listLimit,
			Offset:     listOffset,
		}
		switch filter.Level {
		case "", model.RiskLow, model.RiskMedium, model.RiskHigh:
		default:
			return eris.Errorf("assessments: unknown risk level %q", listLevel)
		}

		assessments, err := st.ListAssessments(ctx, filter)
		if err != nil {
			return err
		}

		formatAssessmentTable(os.Stdout, assessments)
		return nil
	},
}

var assessmentsShowCmd = &cobra.Command{
	Use:   "show <assessment-id>",
	Short: "Show one assessment as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		a, err := st.GetAssessment(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	},
}

var assessmentsIssueCmd = &cobra.Command{
	Use:   "issue <issue-id>",
	Short: "Update an issue's remediation status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		status := model.IssueStatus(issueStatus)
		switch status {
		case model.IssueOpen, model.IssueInProgress, model.IssueResolved:
		default:
			return eris.Errorf("assessments: unknown issue status %q", issueStatus)
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		return st.UpdateIssueStatus(ctx, args[0], status)
	},
}

var assessmentsRecommendationCmd = &cobra.Command{
	Use:   "recommendation <recommendation-id>",
	Short: "Update a recommendation's approval status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		status := model.RecommendationStatus(recStatus)
		switch status {
		case model.RecPending, model.RecApproved, model.RecRejected, model.RecCompleted:
		default:
			return eris.Errorf("assessments: unknown recommendation status %q", recStatus)
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		return st.UpdateRecommendationStatus(ctx, args[0], status)
	},
}

var assessmentsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print portfolio metrics over stored assessments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := monitoring.NewCollector(st).Collect(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func init() {
	assessmentsListCmd.Flags().StringVar(&listProperty, "property", "", "filter by property ID")
	assessmentsListCmd.Flags().StringVar(&listLevel, "level", "", "filter by risk level: low, medium, high")
	assessmentsListCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum rows (default 100)")
	assessmentsListCmd.Flags().IntVar(&listOffset, "offset", 0, "rows to skip")

	assessmentsIssueCmd.Flags().StringVar(&issueStatus, "status", "", "new status: open, in_progress, resolved")
	assessmentsIssueCmd.MarkFlagRequired("status") //nolint:errcheck

	assessmentsRecommendationCmd.Flags().StringVar(&recStatus, "status", "", "new status: pending, approved, rejected, completed")
	assessmentsRecommendationCmd.MarkFlagRequired("status") //nolint:errcheck

	assessmentsCmd.AddCommand(assessmentsListCmd)
	assessmentsCmd.AddCommand(assessmentsShowCmd)
	assessmentsCmd.AddCommand(assessmentsIssueCmd)
	assessmentsCmd.AddCommand(assessmentsRecommendationCmd)
	assessmentsCmd.AddCommand(assessmentsStatsCmd)
	rootCmd.AddCommand(assessmentsCmd)
}
