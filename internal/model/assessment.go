package model

import "time"

// RiskLevel classifies an aggregate risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Severity grades an individual issue.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// TrendDirection is the market price trend.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// ComplianceStatus classifies the compliance risk score.
type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "compliant"
	StatusPartial      ComplianceStatus = "partial"
	StatusNonCompliant ComplianceStatus = "non_compliant"
)

// IssueType categorizes a detected issue.
type IssueType string

const (
	IssueStructural IssueType = "structural"
	IssueCompliance IssueType = "compliance"
	IssueFinancial  IssueType = "financial"
	IssueMarket     IssueType = "market"
	IssueLocation   IssueType = "location"
)

// IssueStatus is the remediation lifecycle state. The engine only ever
// creates issues as open; transitions belong to the workflow system.
type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
)

// RecommendationType categorizes a recommendation.
type RecommendationType string

const (
	RecMaintenance    RecommendationType = "maintenance"
	RecInvestment     RecommendationType = "investment"
	RecCompliance     RecommendationType = "compliance"
	RecRiskMitigation RecommendationType = "risk_mitigation"
)

// Priority ranks a recommendation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// RecommendationStatus is the approval lifecycle state.
type RecommendationStatus string

const (
	RecPending   RecommendationStatus = "pending"
	RecApproved  RecommendationStatus = "approved"
	RecRejected  RecommendationStatus = "rejected"
	RecCompleted RecommendationStatus = "completed"
)

// RiskAssessment is the full output of one scoring run. Scores are risk
// on a 0-100 scale: higher means riskier. It is created fresh per run and
// never mutated after construction.
type RiskAssessment struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`

	Score   float64      `json:"score"`
	Level   RiskLevel    `json:"level"`
	Factors FactorScores `json:"factors"`

	MarketTrend MarketTrend     `json:"market_trend"`
	Compliance  ComplianceScore `json:"compliance"`

	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`

	AssessedAt time.Time `json:"assessed_at"`
}

// FactorScores holds the per-dimension risk sub-scores (0-100).
type FactorScores struct {
	Location          float64 `json:"location"`
	PropertyCondition float64 `json:"property_condition"`
	Financial         float64 `json:"financial"`
}

// MarketTrend is the market analysis sub-result.
type MarketTrend struct {
	Score      float64        `json:"score"`
	Direction  TrendDirection `json:"direction"`
	Confidence float64        `json:"confidence"`
	Factors    []string       `json:"factors,omitempty"`
}

// ComplianceScore is the compliance evaluation sub-result. Score is risk
// (0 best); Issues carries per-category violations plus merged external
// signals; RequiredActions lists remediation steps.
type ComplianceScore struct {
	Score           float64          `json:"score"`
	Status          ComplianceStatus `json:"status"`
	Issues          []Issue          `json:"issues"`
	RequiredActions []string         `json:"required_actions,omitempty"`
}

// Issue is a detected, named problem. Created by the engine as open;
// mutated only by the external remediation workflow.
type Issue struct {
	ID            string      `json:"id"`
	Type          IssueType   `json:"type"`
	Severity      Severity    `json:"severity"`
	Description   string      `json:"description"`
	Impact        string      `json:"impact,omitempty"`
	Resolution    string      `json:"resolution,omitempty"`
	EstimatedCost *float64    `json:"estimated_cost,omitempty"`
	Priority      Priority    `json:"priority"`
	Status        IssueStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Recommendation is a suggested action derived from the assessment.
type Recommendation struct {
	ID            string               `json:"id"`
	Type          RecommendationType   `json:"type"`
	Priority      Priority             `json:"priority"`
	Description   string               `json:"description"`
	Rationale     string               `json:"rationale,omitempty"`
	EstimatedCost *float64             `json:"estimated_cost,omitempty"`
	ExpectedROI   *float64             `json:"expected_roi,omitempty"`
	Timeline      string               `json:"timeline,omitempty"`
	Status        RecommendationStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
}

// ComplianceSignal is an enrichment item sourced from document analysis
// outside the engine. It is merged into the compliance issue list without
// altering the compliance score formula.
type ComplianceSignal struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Reference   string   `json:"reference,omitempty"`
}
