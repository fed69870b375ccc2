package engine

import "github.com/aiquira/assetrisk/internal/model"

// aggregateScore combines the five risk sub-scores with the configured
// weights into one 0-100 score. Pure function of its inputs.
func aggregateScore(factors model.FactorScores, marketScore, complianceScore float64, w AggregateWeights) float64 {
	score := factors.Location*w.Location +
		factors.PropertyCondition*w.Condition +
		factors.Financial*w.Financial +
		marketScore*w.Market +
		complianceScore*w.Compliance

	if sum := w.Sum(); sum > 0 {
		score /= sum
	}
	return clamp100(score)
}

// classifyLevel maps an aggregate score to its tier. Boundaries are
// inclusive on the lower side: score == LowThreshold is still low.
func classifyLevel(score float64, cfg Config) model.RiskLevel {
	switch {
	case score <= cfg.LowThreshold:
		return model.RiskLow
	case score <= cfg.MediumThreshold:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// severityBucket maps a normalized [0,1] trigger metric to a severity.
// Shared by every detection rule so the bucketing stays in one place.
func severityBucket(v float64, cfg Config) model.Severity {
	switch {
	case v < cfg.SeverityLowBound:
		return model.SeverityLow
	case v < cfg.SeverityHighBound:
		return model.SeverityMedium
	default:
		return model.SeverityHigh
	}
}
