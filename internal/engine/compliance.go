package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/aiquira/assetrisk/internal/model"
)

// Compliance evaluation: a risk score built from weighted, capped
// penalties, a status classified against fixed bounds, and a per-category
// issue list. Non-compliant building codes and safety regulations always
// produce high-severity issues; that is policy, not a computed value.

// Penalty weights; they sum to 1.0 on the 0-100 compliance risk scale.
const (
	codePenaltyWeight          = 0.30
	violationPenaltyWeight     = 0.25
	inspectionPenaltyWeight    = 0.25
	certificationPenaltyWeight = 0.20
)

// violationCap is the violation count at which the penalty saturates.
const violationCap = 4

// expectedCertifications is the certification count for zero penalty.
const expectedCertifications = 2

// evaluateCompliance computes the compliance sub-result and merges any
// externally supplied signals into the issue list. Signals never change
// the score formula.
func evaluateCompliance(comp *model.ComplianceRecord, signals []model.ComplianceSignal, cfg Config, now time.Time, gen *idGen) model.ComplianceScore {
	codeFrac, badCodes := nonCompliantFraction(comp.BuildingCodes)
	regFrac, badRegs := nonCompliantFraction(comp.SafetyRegulations)

	// Codes and regulations share the code penalty weight evenly.
	codePenalty := (codeFrac + regFrac) / 2 * 100 * codePenaltyWeight

	violationPenalty := capRatio(len(comp.Violations), violationCap) * 100 * violationPenaltyWeight

	inspectionPenalty := failedInspectionFraction(comp.Inspections) * 100 * inspectionPenaltyWeight

	certShortfall := 1 - capRatio(len(comp.Certifications), expectedCertifications)
	certPenalty := certShortfall * 100 * certificationPenaltyWeight

	score := clamp100(codePenalty + violationPenalty + inspectionPenalty + certPenalty)

	var status model.ComplianceStatus
	switch {
	case score <= cfg.CompliantBound:
		status = model.StatusCompliant
	case score <= cfg.PartialBound:
		status = model.StatusPartial
	default:
		status = model.StatusNonCompliant
	}

	var issues []model.Issue
	var actions []string

	for _, category := range badCodes {
		issues = append(issues, model.Issue{
			ID:          gen.next("issue"),
			Type:        model.IssueCompliance,
			Severity:    model.SeverityHigh,
			Description: fmt.Sprintf("building code %q is non-compliant", category),
			Impact:      "property cannot be certified for occupancy until resolved",
			Resolution:  fmt.Sprintf("bring %s work up to current code and schedule re-inspection", category),
			Priority:    model.PriorityHigh,
			Status:      model.IssueOpen,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		actions = append(actions, fmt.Sprintf("remediate building code: %s", category))
	}
	for _, category := range badRegs {
		issues = append(issues, model.Issue{
			ID:          gen.next("issue"),
			Type:        model.IssueCompliance,
			Severity:    model.SeverityHigh,
			Description: fmt.Sprintf("safety regulation %q is non-compliant", category),
			Impact:      "occupant safety exposure and potential fines",
			Resolution:  fmt.Sprintf("address %s deficiencies and file proof of compliance", category),
			Priority:    model.PriorityHigh,
			Status:      model.IssueOpen,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		actions = append(actions, fmt.Sprintf("remediate safety regulation: %s", category))
	}

	// Merge document-derived signals after the rule-generated issues so
	// insertion order stays meaningful for display.
	for _, sig := range signals {
		issues = append(issues, model.Issue{
			ID:          gen.next("issue"),
			Type:        model.IssueCompliance,
			Severity:    sig.Severity,
			Description: sig.Description,
			Impact:      fmt.Sprintf("flagged by document analysis (%s)", sig.Type),
			Resolution:  sig.Reference,
			Priority:    priorityForSeverity(sig.Severity),
			Status:      model.IssueOpen,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	return model.ComplianceScore{
		Score:           round2(score),
		Status:          status,
		Issues:          issues,
		RequiredActions: actions,
	}
}

// nonCompliantFraction returns the non-compliant share of the category
// map and the sorted list of offending categories. Pending counts as
// compliant for scoring; only explicit non-compliance is penalized.
func nonCompliantFraction(categories map[string]model.ComplianceCategoryStatus) (float64, []string) {
	if len(categories) == 0 {
		return 0, nil
	}
	var bad []string
	for name, status := range categories {
		if status == model.CategoryNonCompliant {
			bad = append(bad, name)
		}
	}
	sort.Strings(bad)
	return float64(len(bad)) / float64(len(categories)), bad
}

func failedInspectionFraction(inspections []model.InspectionResult) float64 {
	if len(inspections) == 0 {
		return 0
	}
	failed := 0
	for _, insp := range inspections {
		if !insp.Passed {
			failed++
		}
	}
	return float64(failed) / float64(len(inspections))
}

// capRatio returns min(n/limit, 1) as a float.
func capRatio(n, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	r := float64(n) / float64(limit)
	if r > 1 {
		return 1
	}
	return r
}

func priorityForSeverity(s model.Severity) model.Priority {
	switch s {
	case model.SeverityHigh:
		return model.PriorityHigh
	case model.SeverityMedium:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}
