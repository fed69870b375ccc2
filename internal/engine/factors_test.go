package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aiquira/assetrisk/internal/model"
)

func TestLocationRisk(t *testing.T) {
	tests := []struct {
		name string
		loc  model.LocationRecord
		want float64
	}{
		{
			"ideal neighborhood",
			model.LocationRecord{CrimeRate: 0, FloodRisk: 0, ProximityToAmenities: 100, SchoolQuality: 100, Transportation: 100},
			0,
		},
		{
			"worst case",
			model.LocationRecord{CrimeRate: 1, FloodRisk: 1, ProximityToAmenities: 0, SchoolQuality: 0, Transportation: 0},
			100,
		},
		{
			"typical suburb",
			model.LocationRecord{CrimeRate: 0.2, FloodRisk: 0.1, ProximityToAmenities: 80, SchoolQuality: 85, Transportation: 75},
			18.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := locationRisk(&tt.loc)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestLocationRiskClampsOutOfRangeInputs(t *testing.T) {
	loc := model.LocationRecord{
		CrimeRate:            2.5,  // above [0,1]
		FloodRisk:            -0.3, // below
		ProximityToAmenities: 150,
		SchoolQuality:        50,
		Transportation:       50,
	}
	got := locationRisk(&loc)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 100.0)
	// Clamped crime=1.0 -> 30, proximity=100 -> 0, flood=0 -> 0,
	// school -> 7.5, transport -> 7.5.
	assert.InDelta(t, 45.0, got, 0.01)
}

func TestConditionRisk(t *testing.T) {
	tests := []struct {
		name string
		cond model.ConditionRecord
		want float64
	}{
		{
			"new and pristine",
			model.ConditionRecord{Age: 0, StructuralIntegrity: 100, MaintenanceScore: 100, EnergyEfficiency: 100, SafetyFeatures: 100},
			0,
		},
		{
			"age penalty saturates at 50 years",
			model.ConditionRecord{Age: 120, StructuralIntegrity: 100, MaintenanceScore: 100, EnergyEfficiency: 100, SafetyFeatures: 100},
			20, // only the age term: min(100, 240)*0.2
		},
		{
			"well kept ten year old",
			model.ConditionRecord{Age: 10, StructuralIntegrity: 90, MaintenanceScore: 70, EnergyEfficiency: 75, SafetyFeatures: 80},
			19.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conditionRisk(&tt.cond)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

// Raising structural integrity must never raise condition risk.
func TestConditionRiskMonotonicInStructuralIntegrity(t *testing.T) {
	base := model.ConditionRecord{Age: 30, MaintenanceScore: 50, EnergyEfficiency: 60, SafetyFeatures: 55}

	prev := 101.0
	for si := 0.0; si <= 100; si += 5 {
		cond := base
		cond.StructuralIntegrity = si
		got := conditionRisk(&cond)
		assert.LessOrEqual(t, got, prev, "risk increased when integrity rose to %v", si)
		prev = got
	}
}

func TestFinancialRisk(t *testing.T) {
	tests := []struct {
		name string
		fin  model.FinancialRecord
		want float64
	}{
		{
			"healthy rental",
			model.FinancialRecord{
				MarketValue: 500_000, RentalIncome: 42_000, OperatingExpenses: 12_000,
				DebtRatio: 0.4, CashFlow: 10_000, VacancyRate: 0.05,
			},
			19.89,
		},
		{
			"no income worst case terms",
			model.FinancialRecord{MarketValue: 500_000, DebtRatio: 1, VacancyRate: 1},
			100, // debt 30 + expenses 25 + yield 20 + vacancy 15 + cash 10
		},
		{
			"negative cash flow penalized",
			model.FinancialRecord{
				MarketValue: 500_000, RentalIncome: 42_000, OperatingExpenses: 12_000,
				DebtRatio: 0.4, CashFlow: -1_000, VacancyRate: 0.05,
			},
			29.89,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := financialRisk(&tt.fin)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestFinancialRiskBounded(t *testing.T) {
	fin := model.FinancialRecord{
		MarketValue: 100, RentalIncome: 1_000_000, OperatingExpenses: 0,
		DebtRatio: -5, CashFlow: 1, VacancyRate: 2,
	}
	got := financialRisk(&fin)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 100.0)
}
