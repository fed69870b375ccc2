package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiquira/assetrisk/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetAssessment_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT payload FROM assessments WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetAssessment(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateAssessment(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	a := sampleAssessment("a-1", "prop-001", model.RiskMedium)

	mock.ExpectExec(`INSERT INTO assessments`).
		WithArgs("a-1", "prop-001", a.Score, "medium",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"issues"},
		[]string{"id", "assessment_id", "seq", "status", "data", "updated_at"}).
		WillReturnResult(1)
	mock.ExpectCopyFrom(pgx.Identifier{"recommendations"},
		[]string{"id", "assessment_id", "seq", "status", "data", "updated_at"}).
		WillReturnResult(1)

	require.NoError(t, s.CreateAssessment(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateIssueStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE issues SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("resolved", pgxmock.AnyArg(), "issue-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateIssueStatus(context.Background(), "issue-1", model.IssueResolved))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateIssueStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE issues SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("resolved", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateIssueStatus(context.Background(), "missing", model.IssueResolved)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issue not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRecommendationStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE recommendations SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("approved", pgxmock.AnyArg(), "rec-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateRecommendationStatus(context.Background(), "rec-1", model.RecApproved))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS assessments`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
