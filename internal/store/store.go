// Package store persists risk assessments and their issue and
// recommendation lifecycles behind a driver-agnostic interface.
package store

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/aiquira/assetrisk/internal/model"
)

// AssessmentFilter specifies criteria for listing assessments.
type AssessmentFilter struct {
	PropertyID string          `json:"property_id,omitempty"`
	Level      model.RiskLevel `json:"level,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for assessments. Assessments
// are immutable once written; only issue and recommendation statuses
// change afterwards, so those live in their own rows.
type Store interface {
	// Assessments
	CreateAssessment(ctx context.Context, a *model.RiskAssessment) error
	GetAssessment(ctx context.Context, id string) (*model.RiskAssessment, error)
	ListAssessments(ctx context.Context, filter AssessmentFilter) ([]*model.RiskAssessment, error)

	// Lifecycle transitions owned by the remediation workflow
	UpdateIssueStatus(ctx context.Context, issueID string, status model.IssueStatus) error
	UpdateRecommendationStatus(ctx context.Context, recID string, status model.RecommendationStatus) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// marshalAssessment serializes an assessment body with the issue and
// recommendation lists stripped; those are stored as child rows.
func marshalAssessment(a *model.RiskAssessment) ([]byte, error) {
	body := *a
	body.Issues = nil
	body.Recommendations = nil

	payload, err := json.Marshal(&body)
	return payload, eris.Wrap(err, "store: marshal assessment")
}
