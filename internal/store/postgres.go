package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/aiquira/assetrisk/internal/db"
	"github.com/aiquira/assetrisk/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_assessment": `INSERT INTO assessments (id, property_id, score, level, payload, assessed_at, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"get_assessment":    `SELECT payload FROM assessments WHERE id = $1`,
	"update_issue":      `UPDATE issues SET status = $1, updated_at = $2 WHERE id = $3`,
	"update_rec":        `UPDATE recommendations SET status = $1, updated_at = $2 WHERE id = $3`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL,
	score       DOUBLE PRECISION NOT NULL,
	level       TEXT NOT NULL,
	payload     JSONB NOT NULL,
	assessed_at TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS issues (
	id            TEXT PRIMARY KEY,
	assessment_id TEXT NOT NULL REFERENCES assessments(id),
	seq           INTEGER NOT NULL,
	status        TEXT NOT NULL DEFAULT 'open',
	data          JSONB NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS recommendations (
	id            TEXT PRIMARY KEY,
	assessment_id TEXT NOT NULL REFERENCES assessments(id),
	seq           INTEGER NOT NULL,
	status        TEXT NOT NULL DEFAULT 'pending',
	data          JSONB NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessments_property ON assessments(property_id);
CREATE INDEX IF NOT EXISTS idx_assessments_level ON assessments(level);
CREATE INDEX IF NOT EXISTS idx_assessments_assessed_at ON assessments(assessed_at DESC);
CREATE INDEX IF NOT EXISTS idx_issues_assessment ON issues(assessment_id);
CREATE INDEX IF NOT EXISTS idx_issues_status ON issues(status);
CREATE INDEX IF NOT EXISTS idx_recommendations_assessment ON recommendations(assessment_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateAssessment(ctx context.Context, a *model.RiskAssessment) error {
	payload, err := marshalAssessment(a)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO assessments (id, property_id, score, level, payload, assessed_at, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.PropertyID, a.Score, string(a.Level), payload, a.AssessedAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert assessment")
	}

	issueRows := make([][]any, 0, len(a.Issues))
	for i, issue := range a.Issues {
		data, err := json.Marshal(issue)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal issue")
		}
		issueRows = append(issueRows, []any{issue.ID, a.ID, i, string(issue.Status), data, issue.UpdatedAt.UTC()})
	}
	if _, err := db.CopyFrom(ctx, s.pool, "issues",
		[]string{"id", "assessment_id", "seq", "status", "data", "updated_at"}, issueRows); err != nil {
		return err
	}

	recRows := make([][]any, 0, len(a.Recommendations))
	for i, rec := range a.Recommendations {
		data, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal recommendation")
		}
		recRows = append(recRows, []any{rec.ID, a.ID, i, string(rec.Status), data, rec.CreatedAt.UTC()})
	}
	if _, err := db.CopyFrom(ctx, s.pool, "recommendations",
		[]string{"id", "assessment_id", "seq", "status", "data", "updated_at"}, recRows); err != nil {
		return err
	}

	return nil
}

func (s *PostgresStore) GetAssessment(ctx context.Context, id string) (*model.RiskAssessment, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM assessments WHERE id = $1`, id,
	).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, eris.New("assessment not found")
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get assessment %s", id)
	}

	var a model.RiskAssessment
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal assessment")
	}
	if err := s.loadChildren(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]*model.RiskAssessment, error) {
	query := `SELECT payload FROM assessments WHERE 1=1`
	var args []any

	if filter.PropertyID != "" {
		args = append(args, filter.PropertyID)
		query += ` AND property_id = $` + strconv.Itoa(len(args))
	}
	if filter.Level != "" {
		args = append(args, string(filter.Level))
		query += ` AND level = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY assessed_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assessments")
	}
	defer rows.Close()

	var out []*model.RiskAssessment
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan assessment")
		}
		var a model.RiskAssessment
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal assessment")
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list assessments iterate")
	}

	for _, a := range out {
		if err := s.loadChildren(ctx, a); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) UpdateIssueStatus(ctx context.Context, issueID string, status model.IssueStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE issues SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), issueID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update issue status %s", issueID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("issue not found: %s", issueID)
	}
	return nil
}

func (s *PostgresStore) UpdateRecommendationStatus(ctx context.Context, recID string, status model.RecommendationStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE recommendations SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), recID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update recommendation status %s", recID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("recommendation not found: %s", recID)
	}
	return nil
}

func (s *PostgresStore) loadChildren(ctx context.Context, a *model.RiskAssessment) error {
	rows, err := s.pool.Query(ctx,
		`SELECT data, status, updated_at FROM issues WHERE assessment_id = $1 ORDER BY seq`, a.ID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: load issues")
	}
	defer rows.Close()

	a.Issues = nil
	for rows.Next() {
		var data []byte
		var status string
		var updatedAt time.Time
		if err := rows.Scan(&data, &status, &updatedAt); err != nil {
			return eris.Wrap(err, "postgres: scan issue")
		}
		var issue model.Issue
		if err := json.Unmarshal(data, &issue); err != nil {
			return eris.Wrap(err, "postgres: unmarshal issue")
		}
		issue.Status = model.IssueStatus(status)
		issue.UpdatedAt = updatedAt
		a.Issues = append(a.Issues, issue)
	}
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "postgres: load issues iterate")
	}

	recRows, err := s.pool.Query(ctx,
		`SELECT data, status FROM recommendations WHERE assessment_id = $1 ORDER BY seq`, a.ID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: load recommendations")
	}
	defer recRows.Close()

	a.Recommendations = nil
	for recRows.Next() {
		var data []byte
		var status string
		if err := recRows.Scan(&data, &status); err != nil {
			return eris.Wrap(err, "postgres: scan recommendation")
		}
		var rec model.Recommendation
		if err := json.Unmarshal(data, &rec); err != nil {
			return eris.Wrap(err, "postgres: unmarshal recommendation")
		}
		rec.Status = model.RecommendationStatus(status)
		a.Recommendations = append(a.Recommendations, rec)
	}
	return eris.Wrap(recRows.Err(), "postgres: load recommendations iterate")
}
