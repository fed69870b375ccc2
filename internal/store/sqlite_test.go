package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiquira/assetrisk/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleAssessment(id, propertyID string, level model.RiskLevel) *model.RiskAssessment {
	cost := 16_000.0
	assessedAt := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return &model.RiskAssessment{
		ID:         id,
		PropertyID: propertyID,
		Score:      42.5,
		Level:      level,
		Factors: model.FactorScores{
			Location:          18,
			PropertyCondition: 19.75,
			Financial:         19.89,
		},
		MarketTrend: model.MarketTrend{Score: 29.05, Direction: model.TrendUp, Confidence: 0.8},
		Compliance:  model.ComplianceScore{Score: 10, Status: model.StatusCompliant},
		Issues: []model.Issue{
			{
				ID:            id + "-issue-1",
				Type:          model.IssueStructural,
				Severity:      model.SeverityMedium,
				Description:   "2 structural issue(s) reported",
				EstimatedCost: &cost,
				Priority:      model.PriorityMedium,
				Status:        model.IssueOpen,
				CreatedAt:     assessedAt,
				UpdatedAt:     assessedAt,
			},
		},
		Recommendations: []model.Recommendation{
			{
				ID:          id + "-rec-1",
				Type:        model.RecMaintenance,
				Priority:    model.PriorityMedium,
				Description: "Establish a preventive maintenance program",
				Status:      model.RecPending,
				CreatedAt:   assessedAt,
			},
		},
		AssessedAt: assessedAt,
	}
}

func TestSQLiteCreateAndGetAssessment(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a := sampleAssessment("a-1", "prop-001", model.RiskMedium)
	require.NoError(t, s.CreateAssessment(ctx, a))

	got, err := s.GetAssessment(ctx, "a-1")
	require.NoError(t, err)

	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.PropertyID, got.PropertyID)
	assert.InDelta(t, a.Score, got.Score, 0.001)
	assert.Equal(t, a.Level, got.Level)
	assert.Equal(t, a.Factors, got.Factors)
	assert.Equal(t, a.MarketTrend, got.MarketTrend)
	assert.Equal(t, a.Compliance, got.Compliance)

	require.Len(t, got.Issues, 1)
	assert.Equal(t, a.Issues[0].ID, got.Issues[0].ID)
	assert.Equal(t, model.IssueOpen, got.Issues[0].Status)
	require.NotNil(t, got.Issues[0].EstimatedCost)
	assert.InDelta(t, 16_000, *got.Issues[0].EstimatedCost, 0.001)

	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, a.Recommendations[0].ID, got.Recommendations[0].ID)
	assert.Equal(t, model.RecPending, got.Recommendations[0].Status)
}

func TestSQLiteGetAssessmentNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetAssessment(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListAssessmentsFilter(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAssessment(ctx, sampleAssessment("a-1", "prop-001", model.RiskLow)))
	require.NoError(t, s.CreateAssessment(ctx, sampleAssessment("a-2", "prop-001", model.RiskHigh)))
	require.NoError(t, s.CreateAssessment(ctx, sampleAssessment("a-3", "prop-002", model.RiskHigh)))

	all, err := s.ListAssessments(ctx, AssessmentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byProperty, err := s.ListAssessments(ctx, AssessmentFilter{PropertyID: "prop-001"})
	require.NoError(t, err)
	assert.Len(t, byProperty, 2)

	byLevel, err := s.ListAssessments(ctx, AssessmentFilter{Level: model.RiskHigh})
	require.NoError(t, err)
	assert.Len(t, byLevel, 2)

	both, err := s.ListAssessments(ctx, AssessmentFilter{PropertyID: "prop-002", Level: model.RiskHigh})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "a-3", both[0].ID)

	limited, err := s.ListAssessments(ctx, AssessmentFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteListAssessmentsIncludesChildren(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAssessment(ctx, sampleAssessment("a-1", "prop-001", model.RiskLow)))

	list, err := s.ListAssessments(ctx, AssessmentFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Issues, 1)
	assert.Len(t, list[0].Recommendations, 1)
}

func TestSQLiteUpdateIssueStatus(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAssessment(ctx, sampleAssessment("a-1", "prop-001", model.RiskLow)))

	require.NoError(t, s.UpdateIssueStatus(ctx, "a-1-issue-1", model.IssueInProgress))

	got, err := s.GetAssessment(ctx, "a-1")
	require.NoError(t, err)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, model.IssueInProgress, got.Issues[0].Status)
}

func TestSQLiteUpdateIssueStatusNotFound(t *testing.T) {
	s := newTestSQLite(t)

	err := s.UpdateIssueStatus(context.Background(), "missing", model.IssueResolved)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issue not found")
}

func TestSQLiteUpdateRecommendationStatus(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAssessment(ctx, sampleAssessment("a-1", "prop-001", model.RiskLow)))

	require.NoError(t, s.UpdateRecommendationStatus(ctx, "a-1-rec-1", model.RecApproved))

	got, err := s.GetAssessment(ctx, "a-1")
	require.NoError(t, err)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, model.RecApproved, got.Recommendations[0].Status)
}

func TestSQLiteUpdateRecommendationStatusNotFound(t *testing.T) {
	s := newTestSQLite(t)

	err := s.UpdateRecommendationStatus(context.Background(), "missing", model.RecRejected)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recommendation not found")
}
