// Package model defines the property record and risk assessment types
// shared across the engine, store, API, and exporters.
package model

import "time"

// PropertyRecord is the immutable input to one scoring run. Sub-structures
// are pointers so the engine can distinguish "absent" from "zero-valued";
// a nil required section aborts scoring before any computation.
type PropertyRecord struct {
	ID         string            `json:"id" yaml:"id"`
	Address    string            `json:"address,omitempty" yaml:"address,omitempty"`
	Location   *LocationRecord   `json:"location" yaml:"location"`
	Condition  *ConditionRecord  `json:"condition" yaml:"condition"`
	Financial  *FinancialRecord  `json:"financial" yaml:"financial"`
	Market     *MarketRecord     `json:"market" yaml:"market"`
	Compliance *ComplianceRecord `json:"compliance" yaml:"compliance"`

	// Signals carries optional compliance enrichment derived from document
	// analysis upstream. The engine merges these into the compliance issue
	// list; they never alter the compliance score formula.
	Signals []ComplianceSignal `json:"signals,omitempty" yaml:"signals,omitempty"`
}

// LocationRecord holds location risk attributes. CrimeRate and FloodRisk
// are ratios in [0,1]; the remaining fields are quality indexes in [0,100]
// where higher is better.
type LocationRecord struct {
	CrimeRate            float64 `json:"crime_rate" yaml:"crime_rate"`
	FloodRisk            float64 `json:"flood_risk" yaml:"flood_risk"`
	ProximityToAmenities float64 `json:"proximity_to_amenities" yaml:"proximity_to_amenities"`
	SchoolQuality        float64 `json:"school_quality" yaml:"school_quality"`
	Transportation       float64 `json:"transportation" yaml:"transportation"`

	// Optional coordinates for flood-zone lookup when FloodRisk is unset.
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

// ConditionRecord holds physical condition attributes. Age is in years;
// the index fields are [0,100] where higher is better.
type ConditionRecord struct {
	Age                 float64  `json:"age" yaml:"age"`
	StructuralIntegrity float64  `json:"structural_integrity" yaml:"structural_integrity"`
	MaintenanceHistory  []string `json:"maintenance_history,omitempty" yaml:"maintenance_history,omitempty"`
	MaintenanceScore    float64  `json:"maintenance_score" yaml:"maintenance_score"`
	EnergyEfficiency    float64  `json:"energy_efficiency" yaml:"energy_efficiency"`
	SafetyFeatures      float64  `json:"safety_features" yaml:"safety_features"`
	StructuralIssues    []string `json:"structural_issues,omitempty" yaml:"structural_issues,omitempty"`
}

// FinancialRecord holds financial attributes. Ratios are [0,1]; monetary
// values are annual USD amounts.
type FinancialRecord struct {
	MarketValue       float64 `json:"market_value" yaml:"market_value"`
	RentalIncome      float64 `json:"rental_income" yaml:"rental_income"`
	OperatingExpenses float64 `json:"operating_expenses" yaml:"operating_expenses"`
	DebtRatio         float64 `json:"debt_ratio" yaml:"debt_ratio"`
	CashFlow          float64 `json:"cash_flow" yaml:"cash_flow"`
	VacancyRate       float64 `json:"vacancy_rate" yaml:"vacancy_rate"`
}

// MarketRecord holds the market snapshot the record was scored against.
// PriceHistory is ordered oldest to newest.
type MarketRecord struct {
	PriceHistory      []float64          `json:"price_history" yaml:"price_history"`
	DemandSupplyRatio float64            `json:"demand_supply_ratio" yaml:"demand_supply_ratio"`
	Economic          EconomicIndicators `json:"economic" yaml:"economic"`
}

// EconomicIndicators holds macro indicators as percentages.
type EconomicIndicators struct {
	GDPGrowth    float64 `json:"gdp_growth" yaml:"gdp_growth"`
	Unemployment float64 `json:"unemployment" yaml:"unemployment"`
	Inflation    float64 `json:"inflation" yaml:"inflation"`
	InterestRate float64 `json:"interest_rate" yaml:"interest_rate"`
}

// ComplianceCategoryStatus is the compliance state of one code or
// regulation category.
type ComplianceCategoryStatus string

const (
	CategoryCompliant    ComplianceCategoryStatus = "compliant"
	CategoryNonCompliant ComplianceCategoryStatus = "non_compliant"
	CategoryPending      ComplianceCategoryStatus = "pending"
)

// ComplianceRecord holds the regulatory state of the property.
type ComplianceRecord struct {
	BuildingCodes     map[string]ComplianceCategoryStatus `json:"building_codes" yaml:"building_codes"`
	SafetyRegulations map[string]ComplianceCategoryStatus `json:"safety_regulations" yaml:"safety_regulations"`
	Certifications    []string                            `json:"certifications,omitempty" yaml:"certifications,omitempty"`
	Permits           []Permit                            `json:"permits,omitempty" yaml:"permits,omitempty"`
	Violations        []string                            `json:"violations,omitempty" yaml:"violations,omitempty"`
	Inspections       []InspectionResult                  `json:"inspections,omitempty" yaml:"inspections,omitempty"`
}

// Permit is a building or occupancy permit.
type Permit struct {
	Type      string     `json:"type" yaml:"type"`
	Valid     bool       `json:"valid" yaml:"valid"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// Expired reports whether the permit is invalid or past its expiry.
func (p Permit) Expired(now time.Time) bool {
	if !p.Valid {
		return true
	}
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// InspectionResult is the outcome of a single inspection.
type InspectionResult struct {
	Type   string    `json:"type" yaml:"type"`
	Passed bool      `json:"passed" yaml:"passed"`
	Date   time.Time `json:"date" yaml:"date"`
}
