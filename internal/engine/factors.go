package engine

import (
	"math"

	"github.com/aiquira/assetrisk/internal/model"
)

// Factor calculators. Each returns a risk sub-score in [0,100] (higher is
// riskier) from one record section, as a fixed linear combination whose
// weights sum to 1.0. Pure functions: no I/O, no shared state.

// locationRisk scores the location dimension. CrimeRate and FloodRisk are
// [0,1] ratios; the quality indexes are [0,100] and inverted so a strong
// neighborhood lowers risk.
func locationRisk(loc *model.LocationRecord) float64 {
	crime := clampRange("location.crime_rate", loc.CrimeRate, 0, 1) * 100
	flood := clampRange("location.flood_risk", loc.FloodRisk, 0, 1) * 100
	proximity := clampRange("location.proximity_to_amenities", loc.ProximityToAmenities, 0, 100)
	school := clampRange("location.school_quality", loc.SchoolQuality, 0, 100)
	transport := clampRange("location.transportation", loc.Transportation, 0, 100)

	score := crime*0.30 +
		(100-proximity)*0.20 +
		flood*0.20 +
		(100-school)*0.15 +
		(100-transport)*0.15
	return clamp100(score)
}

// conditionRisk scores the physical condition dimension. Age contributes
// linearly at two points per year, saturating at 50 years.
func conditionRisk(cond *model.ConditionRecord) float64 {
	age := clampRange("condition.age", cond.Age, 0, 200)
	structural := clampRange("condition.structural_integrity", cond.StructuralIntegrity, 0, 100)
	maintenance := clampRange("condition.maintenance_score", cond.MaintenanceScore, 0, 100)
	energy := clampRange("condition.energy_efficiency", cond.EnergyEfficiency, 0, 100)
	safety := clampRange("condition.safety_features", cond.SafetyFeatures, 0, 100)

	agePenalty := math.Min(100, age*2)

	score := (100-structural)*0.30 +
		(100-maintenance)*0.20 +
		agePenalty*0.20 +
		(100-energy)*0.15 +
		(100-safety)*0.15
	return clamp100(score)
}

// Income yield at or above this annual rate earns full credit.
const benchmarkYield = 0.08

// financialRisk scores the financial dimension: a blend of debt load,
// operating-expense burden, income yield against a benchmark, vacancy,
// and a binary negative-cash-flow penalty.
func financialRisk(fin *model.FinancialRecord) float64 {
	debt := clampRange("financial.debt_ratio", fin.DebtRatio, 0, 1)
	vacancy := clampRange("financial.vacancy_rate", fin.VacancyRate, 0, 1)

	// Operating expense burden as a share of rental income. No income at
	// all is the worst case.
	expenseRatio := 1.0
	if fin.RentalIncome > 0 {
		expenseRatio = math.Min(1, math.Max(0, fin.OperatingExpenses/fin.RentalIncome))
	}

	// Income yield relative to the benchmark; zero market value means the
	// yield term carries no information and scores as maximal risk.
	yieldShortfall := 1.0
	if fin.MarketValue > 0 && fin.RentalIncome > 0 {
		yield := fin.RentalIncome / fin.MarketValue
		yieldShortfall = 1 - math.Min(1, yield/benchmarkYield)
	}

	cashPenalty := 0.0
	if fin.CashFlow <= 0 {
		cashPenalty = 1.0
	}

	score := (debt*0.30 +
		expenseRatio*0.25 +
		yieldShortfall*0.20 +
		vacancy*0.15 +
		cashPenalty*0.10) * 100
	return clamp100(score)
}

// clamp100 bounds a computed sub-score to its declared [0,100] range.
func clamp100(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

// round2 rounds to two decimal places for stable serialized output.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
