package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/aiquira/assetrisk/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL,
	score       REAL NOT NULL,
	level       TEXT NOT NULL,
	payload     TEXT NOT NULL,
	assessed_at DATETIME NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS issues (
	id            TEXT PRIMARY KEY,
	assessment_id TEXT NOT NULL REFERENCES assessments(id),
	seq           INTEGER NOT NULL,
	status        TEXT NOT NULL DEFAULT 'open',
	data          TEXT NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS recommendations (
	id            TEXT PRIMARY KEY,
	assessment_id TEXT NOT NULL REFERENCES assessments(id),
	seq           INTEGER NOT NULL,
	status        TEXT NOT NULL DEFAULT 'pending',
	data          TEXT NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessments_property ON assessments(property_id);
CREATE INDEX IF NOT EXISTS idx_assessments_level ON assessments(level);
CREATE INDEX IF NOT EXISTS idx_issues_assessment ON issues(assessment_id);
CREATE INDEX IF NOT EXISTS idx_recommendations_assessment ON recommendations(assessment_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateAssessment(ctx context.Context, a *model.RiskAssessment) error {
	payload, err := marshalAssessment(a)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO assessments (id, property_id, score, level, payload, assessed_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PropertyID, a.Score, string(a.Level), string(payload), a.AssessedAt.UTC(), now,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert assessment")
	}

	for i, issue := range a.Issues {
		data, err := json.Marshal(issue)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal issue")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO issues (id, assessment_id, seq, status, data, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			issue.ID, a.ID, i, string(issue.Status), string(data), issue.UpdatedAt.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert issue %s", issue.ID)
		}
	}

	for i, rec := range a.Recommendations {
		data, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal recommendation")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO recommendations (id, assessment_id, seq, status, data, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, a.ID, i, string(rec.Status), string(data), rec.CreatedAt.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert recommendation %s", rec.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit assessment")
}

func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (*model.RiskAssessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM assessments WHERE id = ?`, id,
	)
	a, err := scanAssessment(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadChildren(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *SQLiteStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]*model.RiskAssessment, error) {
	query := `SELECT payload FROM assessments WHERE 1=1`
	var args []any

	if filter.PropertyID != "" {
		query += ` AND property_id = ?`
		args = append(args, filter.PropertyID)
	}
	if filter.Level != "" {
		query += ` AND level = ?`
		args = append(args, string(filter.Level))
	}
	query += ` ORDER BY assessed_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assessments")
	}
	defer rows.Close()

	var out []*model.RiskAssessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list assessments iterate")
	}

	for _, a := range out {
		if err := s.loadChildren(ctx, a); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) UpdateIssueStatus(ctx context.Context, issueID string, status model.IssueStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE issues SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), issueID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update issue status %s", issueID)
	}
	return checkRowsAffected(res, "issue", issueID)
}

func (s *SQLiteStore) UpdateRecommendationStatus(ctx context.Context, recID string, status model.RecommendationStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recommendations SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), recID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update recommendation status %s", recID)
	}
	return checkRowsAffected(res, "recommendation", recID)
}

// loadChildren fills the issue and recommendation lists from their
// rows, taking the lifecycle status from the columns rather than the
// serialized body.
func (s *SQLiteStore) loadChildren(ctx context.Context, a *model.RiskAssessment) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data, status, updated_at FROM issues WHERE assessment_id = ? ORDER BY seq`, a.ID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: load issues")
	}
	defer rows.Close()

	a.Issues = nil
	for rows.Next() {
		var data, status string
		var updatedAt time.Time
		if err := rows.Scan(&data, &status, &updatedAt); err != nil {
			return eris.Wrap(err, "sqlite: scan issue")
		}
		var issue model.Issue
		if err := json.Unmarshal([]byte(data), &issue); err != nil {
			return eris.Wrap(err, "sqlite: unmarshal issue")
		}
		issue.Status = model.IssueStatus(status)
		issue.UpdatedAt = updatedAt
		a.Issues = append(a.Issues, issue)
	}
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "sqlite: load issues iterate")
	}

	recRows, err := s.db.QueryContext(ctx,
		`SELECT data, status FROM recommendations WHERE assessment_id = ? ORDER BY seq`, a.ID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: load recommendations")
	}
	defer recRows.Close()

	a.Recommendations = nil
	for recRows.Next() {
		var data, status string
		if err := recRows.Scan(&data, &status); err != nil {
			return eris.Wrap(err, "sqlite: scan recommendation")
		}
		var rec model.Recommendation
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return eris.Wrap(err, "sqlite: unmarshal recommendation")
		}
		rec.Status = model.RecommendationStatus(status)
		a.Recommendations = append(a.Recommendations, rec)
	}
	return eris.Wrap(recRows.Err(), "sqlite: load recommendations iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAssessment(row scannable) (*model.RiskAssessment, error) {
	var payload string

	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.New("assessment not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan assessment")
	}

	var a model.RiskAssessment
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal assessment")
	}
	return &a, nil
}
