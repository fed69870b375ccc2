// Package engine implements the risk and compliance scoring pipeline that
// turns a PropertyRecord into a RiskAssessment.
package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// WeightProfile names one of the aggregate weighting policies.
type WeightProfile string

const (
	// ProfileBalanced is the canonical policy: dimensions weighted near
	// evenly, with property condition slightly dominant.
	ProfileBalanced WeightProfile = "balanced"
	// ProfileConditionWeighted is the legacy alternative that favors
	// location and condition over market signals.
	ProfileConditionWeighted WeightProfile = "condition_weighted"
)

// AggregateWeights holds the per-dimension weights used to combine
// sub-scores into the overall risk score. Weights sum to 1.0.
type AggregateWeights struct {
	Location   float64 `yaml:"location" mapstructure:"location"`
	Condition  float64 `yaml:"condition" mapstructure:"condition"`
	Financial  float64 `yaml:"financial" mapstructure:"financial"`
	Market     float64 `yaml:"market" mapstructure:"market"`
	Compliance float64 `yaml:"compliance" mapstructure:"compliance"`
}

// Sum returns the total of all aggregate weights.
func (w AggregateWeights) Sum() float64 {
	return w.Location + w.Condition + w.Financial + w.Market + w.Compliance
}

// RecommendationCost is a fixed cost/timeline entry used by the
// recommendation synthesizer.
type RecommendationCost struct {
	Cost     float64 `yaml:"cost" mapstructure:"cost"`
	ROI      float64 `yaml:"roi" mapstructure:"roi"`
	Timeline string  `yaml:"timeline" mapstructure:"timeline"`
}

// Config holds every weight, threshold, and fixed cost the engine uses.
// It is set at construction time and never mutated afterwards, so one
// Config may back many concurrent scoring calls.
type Config struct {
	Profile WeightProfile    `yaml:"weight_profile" mapstructure:"weight_profile"`
	Weights AggregateWeights `yaml:"weights" mapstructure:"weights"`

	// Tier boundaries on the 0-100 risk scale, inclusive on the lower
	// side: score <= Low is low, score <= Medium is medium, else high.
	LowThreshold    float64 `yaml:"low_threshold" mapstructure:"low_threshold"`
	MediumThreshold float64 `yaml:"medium_threshold" mapstructure:"medium_threshold"`

	// Severity bucket boundaries on a normalized [0,1] metric.
	SeverityLowBound  float64 `yaml:"severity_low_bound" mapstructure:"severity_low_bound"`
	SeverityHighBound float64 `yaml:"severity_high_bound" mapstructure:"severity_high_bound"`

	// Issue detection thresholds.
	VacancyThreshold      float64 `yaml:"vacancy_threshold" mapstructure:"vacancy_threshold"`
	LocationRiskThreshold float64 `yaml:"location_risk_threshold" mapstructure:"location_risk_threshold"`

	// Recommendation triggers.
	EnergyEfficiencyFloor float64 `yaml:"energy_efficiency_floor" mapstructure:"energy_efficiency_floor"`

	// Compliance status boundaries on the compliance risk score.
	CompliantBound float64 `yaml:"compliant_bound" mapstructure:"compliant_bound"`
	PartialBound   float64 `yaml:"partial_bound" mapstructure:"partial_bound"`

	// Market confidence saturation: price points needed for full
	// availability credit.
	FullHistoryPoints int `yaml:"full_history_points" mapstructure:"full_history_points"`

	// Fixed recommendation cost table keyed by recommendation kind.
	Costs map[string]RecommendationCost `yaml:"costs" mapstructure:"costs"`
}

// Recommendation cost table keys.
const (
	CostMaintenancePlan = "maintenance_plan"
	CostEnergyRetrofit  = "energy_retrofit"
	CostPermitRenewal   = "permit_renewal"
	CostRiskReview      = "risk_review"
)

// DefaultConfig returns the canonical engine configuration: balanced
// weight profile, 30/70 tier thresholds, 0.3/0.7 severity buckets.
func DefaultConfig() Config {
	return Config{
		Profile: ProfileBalanced,
		Weights: weightsFor(ProfileBalanced),

		LowThreshold:    30,
		MediumThreshold: 70,

		SeverityLowBound:  0.3,
		SeverityHighBound: 0.7,

		VacancyThreshold:      0.10,
		LocationRiskThreshold: 60,
		EnergyEfficiencyFloor: 50,

		CompliantBound: 20,
		PartialBound:   55,

		FullHistoryPoints: 12,

		Costs: map[string]RecommendationCost{
			CostMaintenancePlan: {Cost: 2_500, ROI: 0.08, Timeline: "3 months"},
			CostEnergyRetrofit:  {Cost: 15_000, ROI: 0.12, Timeline: "6-12 months"},
			CostPermitRenewal:   {Cost: 1_200, Timeline: "1 month"},
			CostRiskReview:      {Cost: 5_000, Timeline: "immediate"},
		},
	}
}

// weightsFor returns the aggregate weights for a named profile.
func weightsFor(p WeightProfile) AggregateWeights {
	switch p {
	case ProfileConditionWeighted:
		return AggregateWeights{
			Location:   0.25,
			Condition:  0.30,
			Financial:  0.20,
			Market:     0.10,
			Compliance: 0.15,
		}
	default:
		return AggregateWeights{
			Location:   0.20,
			Condition:  0.25,
			Financial:  0.20,
			Market:     0.15,
			Compliance: 0.20,
		}
	}
}

// ApplyProfile overwrites the aggregate weights with the named profile's
// values. Unknown profiles fall back to balanced.
func (c *Config) ApplyProfile(p WeightProfile) {
	c.Profile = p
	c.Weights = weightsFor(p)
}

// Validate checks that the config is internally consistent.
func (c Config) Validate() error {
	var errs []string

	weights := map[string]float64{
		"location":   c.Weights.Location,
		"condition":  c.Weights.Condition,
		"financial":  c.Weights.Financial,
		"market":     c.Weights.Market,
		"compliance": c.Weights.Compliance,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s weight must be >= 0", name))
		}
	}
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > 0.01 {
		errs = append(errs, fmt.Sprintf("aggregate weights should sum to 1.0, got %.3f", sum))
	}

	if c.LowThreshold < 0 || c.LowThreshold > 100 {
		errs = append(errs, "low_threshold must be between 0 and 100")
	}
	if c.MediumThreshold <= c.LowThreshold || c.MediumThreshold > 100 {
		errs = append(errs, "medium_threshold must be > low_threshold and <= 100")
	}

	if c.SeverityLowBound <= 0 || c.SeverityLowBound >= c.SeverityHighBound || c.SeverityHighBound >= 1 {
		errs = append(errs, "severity bounds must satisfy 0 < low < high < 1")
	}

	if c.VacancyThreshold < 0 || c.VacancyThreshold > 1 {
		errs = append(errs, "vacancy_threshold must be between 0 and 1")
	}
	if c.CompliantBound < 0 || c.CompliantBound >= c.PartialBound || c.PartialBound > 100 {
		errs = append(errs, "compliance bounds must satisfy 0 <= compliant < partial <= 100")
	}
	if c.FullHistoryPoints <= 0 {
		errs = append(errs, "full_history_points must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("engine: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
