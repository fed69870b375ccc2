package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/aiquira/assetrisk/internal/model"
)

// Issue detection: a fixed set of independent predicates over the record
// and the aggregated result. Rules may all fire in the same run; there is
// no deduplication, and insertion order is preserved for display.

// structuralIssueCap is the open-issue count at which the normalized
// severity metric saturates.
const structuralIssueCap = 5

// detectIssues runs every rule and returns the emitted issues in rule
// order. Severity always comes from the shared severityBucket applied to
// whatever normalized metric triggered the rule.
func detectIssues(rec *model.PropertyRecord, factors model.FactorScores, trend model.MarketTrend, cfg Config, now time.Time, gen *idGen) []model.Issue {
	var issues []model.Issue

	add := func(t model.IssueType, v float64, description, impact, resolution string, cost *float64) {
		sev := severityBucket(v, cfg)
		issues = append(issues, model.Issue{
			ID:            gen.next("issue"),
			Type:          t,
			Severity:      sev,
			Description:   description,
			Impact:        impact,
			Resolution:    resolution,
			EstimatedCost: cost,
			Priority:      priorityForSeverity(sev),
			Status:        model.IssueOpen,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	// Open structural issues.
	if n := len(rec.Condition.StructuralIssues); n > 0 {
		v := math.Min(float64(n)/structuralIssueCap, 1)
		cost := float64(n) * 8_000
		add(model.IssueStructural, v,
			fmt.Sprintf("%d open structural issue(s): %s", n, firstOf(rec.Condition.StructuralIssues)),
			"structural defects depress value and may worsen if deferred",
			"commission a structural engineer's report and repair plan",
			&cost)
	}

	// Recorded compliance violations.
	if n := len(rec.Compliance.Violations); n > 0 {
		v := math.Min(float64(n)/violationCap, 1)
		add(model.IssueCompliance, v,
			fmt.Sprintf("%d recorded compliance violation(s)", n),
			"open violations block certification and accrue penalties",
			"resolve each violation with the issuing authority",
			nil)
	}

	// Vacancy above threshold.
	if rec.Financial.VacancyRate > cfg.VacancyThreshold {
		v := clampRange("financial.vacancy_rate", rec.Financial.VacancyRate, 0, 1)
		add(model.IssueFinancial, v,
			fmt.Sprintf("vacancy rate %.0f%% exceeds %.0f%% threshold",
				v*100, cfg.VacancyThreshold*100),
			"vacant units erode rental income and cash flow",
			"review pricing and marketing of vacant units",
			nil)
	}

	// Declining market.
	if trend.Direction == model.TrendDown {
		add(model.IssueMarket, trend.Score/100,
			"market price trend is declining",
			"falling comparables pressure resale value and refinancing",
			"re-evaluate hold strategy against local market data",
			nil)
	}

	// High location risk.
	if factors.Location > cfg.LocationRiskThreshold {
		add(model.IssueLocation, factors.Location/100,
			fmt.Sprintf("location risk factor %.0f exceeds %.0f threshold",
				factors.Location, cfg.LocationRiskThreshold),
			"neighborhood risk weighs on demand and insurance cost",
			"assess mitigation options: security, flood defenses, insurance",
			nil)
	}

	return issues
}

func firstOf(items []string) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) == 1 {
		return items[0]
	}
	return items[0] + ", ..."
}
