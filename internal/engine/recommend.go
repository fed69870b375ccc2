package engine

import (
	"fmt"
	"time"

	"github.com/aiquira/assetrisk/internal/model"
)

// Recommendation synthesis: fixed predicates over the record, the
// aggregated result, and the issue list. Costs and timelines come from
// the config table. Recommendations reference conditions that issues may
// also describe; the two coexist without cross-linking.

func synthesizeRecommendations(rec *model.PropertyRecord, level model.RiskLevel, issues []model.Issue, cfg Config, now time.Time, gen *idGen) []model.Recommendation {
	var recs []model.Recommendation

	add := func(t model.RecommendationType, p model.Priority, costKey, description, rationale string) {
		r := model.Recommendation{
			ID:          gen.next("recommendation"),
			Type:        t,
			Priority:    p,
			Description: description,
			Rationale:   rationale,
			Status:      model.RecPending,
			CreatedAt:   now,
		}
		if entry, ok := cfg.Costs[costKey]; ok {
			cost := entry.Cost
			r.EstimatedCost = &cost
			r.Timeline = entry.Timeline
			if entry.ROI > 0 {
				roi := entry.ROI
				r.ExpectedROI = &roi
			}
		}
		recs = append(recs, r)
	}

	// No maintenance history on record.
	if len(rec.Condition.MaintenanceHistory) == 0 {
		add(model.RecMaintenance, model.PriorityMedium, CostMaintenancePlan,
			"establish a documented preventive maintenance program",
			"no maintenance history is recorded for this property")
	}

	// Poor energy efficiency.
	if rec.Condition.EnergyEfficiency < cfg.EnergyEfficiencyFloor {
		add(model.RecInvestment, model.PriorityMedium, CostEnergyRetrofit,
			"invest in an energy efficiency retrofit",
			fmt.Sprintf("energy efficiency rating %.0f is below the %.0f floor",
				rec.Condition.EnergyEfficiency, cfg.EnergyEfficiencyFloor))
	}

	// Invalid or expired permits.
	if n := countExpiredPermits(rec.Compliance.Permits, now); n > 0 {
		add(model.RecCompliance, model.PriorityHigh, CostPermitRenewal,
			fmt.Sprintf("renew %d invalid or expired permit(s)", n),
			"lapsed permits expose the owner to stop-work orders and fines")
	}

	// Overall high risk.
	if level == model.RiskHigh {
		add(model.RecRiskMitigation, model.PriorityHigh, CostRiskReview,
			"commission a full risk review before any transaction",
			fmt.Sprintf("overall risk level is high with %d open issue(s)", len(issues)))
	}

	return recs
}

func countExpiredPermits(permits []model.Permit, now time.Time) int {
	n := 0
	for _, p := range permits {
		if p.Expired(now) {
			n++
		}
	}
	return n
}
