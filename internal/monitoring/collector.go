// Package monitoring computes portfolio-level health metrics from
// stored assessments.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/aiquira/assetrisk/internal/model"
	"github.com/aiquira/assetrisk/internal/store"
)

// MetricsSnapshot holds a point-in-time view of the assessed portfolio.
type MetricsSnapshot struct {
	// Assessment counts.
	Total      int `json:"total"`
	LowRisk    int `json:"low_risk"`
	MediumRisk int `json:"medium_risk"`
	HighRisk   int `json:"high_risk"`

	AvgScore float64 `json:"avg_score"`

	// Issue lifecycle.
	OpenIssues       int `json:"open_issues"`
	InProgressIssues int `json:"in_progress_issues"`
	HighSevOpen      int `json:"high_severity_open"`

	// Recommendation lifecycle.
	PendingRecommendations int `json:"pending_recommendations"`

	// Sum of estimated costs over open issues.
	OpenIssueCostUSD float64 `json:"open_issue_cost_usd"`

	CollectedAt time.Time `json:"collected_at"`
}

// Collector gathers metrics from the assessment store.
type Collector struct {
	store store.Store
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot over the most recent assessments.
func (c *Collector) Collect(ctx context.Context) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		CollectedAt: time.Now().UTC(),
	}

	assessments, err := c.store.ListAssessments(ctx, store.AssessmentFilter{Limit: 10000})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list assessments")
	}

	snap.Total = len(assessments)
	var totalScore float64

	for _, a := range assessments {
		totalScore += a.Score
		switch a.Level {
		case model.RiskLow:
			snap.LowRisk++
		case model.RiskMedium:
			snap.MediumRisk++
		case model.RiskHigh:
			snap.HighRisk++
		}

		for _, issue := range a.Issues {
			switch issue.Status {
			case model.IssueOpen:
				snap.OpenIssues++
				if issue.Severity == model.SeverityHigh {
					snap.HighSevOpen++
				}
				if issue.EstimatedCost != nil {
					snap.OpenIssueCostUSD += *issue.EstimatedCost
				}
			case model.IssueInProgress:
				snap.InProgressIssues++
			}
		}

		for _, rec := range a.Recommendations {
			if rec.Status == model.RecPending {
				snap.PendingRecommendations++
			}
		}
	}

	if snap.Total > 0 {
		snap.AvgScore = totalScore / float64(snap.Total)
	}
	return snap, nil
}
