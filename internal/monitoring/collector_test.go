package monitoring

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiquira/assetrisk/internal/model"
	"github.com/aiquira/assetrisk/internal/store"
)

func seedStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))

	cost := 16_000.0
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assessments := []*model.RiskAssessment{
		{
			ID: "a-1", PropertyID: "prop-001", Score: 20, Level: model.RiskLow,
			AssessedAt: now,
		},
		{
			ID: "a-2", PropertyID: "prop-002", Score: 50, Level: model.RiskMedium,
			Issues: []model.Issue{
				{ID: "i-1", Severity: model.SeverityMedium, Status: model.IssueOpen, EstimatedCost: &cost, CreatedAt: now, UpdatedAt: now},
			},
			Recommendations: []model.Recommendation{
				{ID: "r-1", Status: model.RecPending, CreatedAt: now},
			},
			AssessedAt: now,
		},
		{
			ID: "a-3", PropertyID: "prop-003", Score: 80, Level: model.RiskHigh,
			Issues: []model.Issue{
				{ID: "i-2", Severity: model.SeverityHigh, Status: model.IssueOpen, CreatedAt: now, UpdatedAt: now},
				{ID: "i-3", Severity: model.SeverityHigh, Status: model.IssueOpen, CreatedAt: now, UpdatedAt: now},
			},
			Recommendations: []model.Recommendation{
				{ID: "r-2", Status: model.RecPending, CreatedAt: now},
				{ID: "r-3", Status: model.RecPending, CreatedAt: now},
			},
			AssessedAt: now,
		},
	}
	for _, a := range assessments {
		require.NoError(t, s.CreateAssessment(ctx, a))
	}

	// One issue moves into remediation, one recommendation gets approved.
	require.NoError(t, s.UpdateIssueStatus(ctx, "i-3", model.IssueInProgress))
	require.NoError(t, s.UpdateRecommendationStatus(ctx, "r-3", model.RecApproved))

	return s
}

func TestCollect(t *testing.T) {
	s := seedStore(t)
	c := NewCollector(s)

	snap, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 1, snap.LowRisk)
	assert.Equal(t, 1, snap.MediumRisk)
	assert.Equal(t, 1, snap.HighRisk)
	assert.InDelta(t, 50, snap.AvgScore, 0.001)

	assert.Equal(t, 2, snap.OpenIssues)
	assert.Equal(t, 1, snap.InProgressIssues)
	assert.Equal(t, 1, snap.HighSevOpen)
	assert.InDelta(t, 16_000, snap.OpenIssueCostUSD, 0.001)

	assert.Equal(t, 2, snap.PendingRecommendations)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestCollectEmptyStore(t *testing.T) {
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))

	snap, err := NewCollector(s).Collect(context.Background())
	require.NoError(t, err)

	assert.Zero(t, snap.Total)
	assert.Zero(t, snap.AvgScore)
}
