package engine

import (
	"fmt"
	"math"

	"github.com/aiquira/assetrisk/internal/model"
)

// Market trend analysis: derives direction, a market risk sub-score, and
// a confidence value from the price-history series and macro indicators.

// Economic indicator caps: contributions saturate at these values.
const (
	gdpCap          = 5.0  // % growth for full credit
	unemploymentCap = 15.0 // % for maximal penalty
	inflationCap    = 10.0
	interestCap     = 12.0
)

// Stability flag cutoffs used by the confidence calculation.
const (
	stableGDPFloor         = 0.0
	stableUnemploymentCeil = 8.0
	stableInflationCeil    = 5.0
	stableInterestRateCeil = 8.0
)

// trendDirection derives the direction from the last two prices only.
// Fewer than two points is stable by definition.
func trendDirection(history []float64) model.TrendDirection {
	if len(history) < 2 {
		return model.TrendStable
	}
	latest := history[len(history)-1]
	previous := history[len(history)-2]
	switch {
	case latest > previous:
		return model.TrendUp
	case latest < previous:
		return model.TrendDown
	default:
		return model.TrendStable
	}
}

// analyzeMarket computes the market trend sub-result.
func analyzeMarket(mkt *model.MarketRecord, cfg Config) (model.MarketTrend, error) {
	direction := trendDirection(mkt.PriceHistory)

	// Direction term: rising markets derisk the asset.
	var directionRisk float64
	switch direction {
	case model.TrendUp:
		directionRisk = 20
	case model.TrendDown:
		directionRisk = 80
	default:
		directionRisk = 50
	}

	// Demand/supply term. Ratio above 1 means demand exceeds supply.
	// A zero or negative supply upstream encodes as ratio <= 0 or +Inf;
	// both are guarded here so no non-finite value reaches arithmetic.
	dsRisk := demandSupplyRisk(mkt.DemandSupplyRatio)

	econRisk := economicRisk(mkt.Economic)

	score := directionRisk*0.40 + dsRisk*0.30 + econRisk*0.30
	score, err := checkFinite("market score", score)
	if err != nil {
		return model.MarketTrend{}, err
	}

	confidence := marketConfidence(mkt, cfg)

	factors := []string{
		fmt.Sprintf("price trend %s over %d points", direction, len(mkt.PriceHistory)),
		fmt.Sprintf("demand/supply ratio %.2f", mkt.DemandSupplyRatio),
		fmt.Sprintf("economic risk %.0f/100", econRisk),
	}

	return model.MarketTrend{
		Score:      round2(clamp100(score)),
		Direction:  direction,
		Confidence: round2(confidence),
		Factors:    factors,
	}, nil
}

// demandSupplyRisk maps the demand/supply ratio to [0,100] risk. Extreme
// demand (including the degenerate zero-supply case, which arrives as
// +Inf) is treated as minimal market risk rather than propagated.
func demandSupplyRisk(ratio float64) float64 {
	if math.IsInf(ratio, 1) || ratio >= 2 {
		return 0
	}
	if math.IsNaN(ratio) || ratio <= 0 {
		return 100
	}
	// Linear: ratio 2 -> 0 risk, ratio 0 -> 100 risk.
	return clamp100(100 * (1 - ratio/2))
}

// economicRisk blends the four macro indicators into [0,100]. GDP growth
// is good when high; the other three are inversely weighted, each capped.
func economicRisk(econ model.EconomicIndicators) float64 {
	gdpTerm := 100 * (1 - math.Min(math.Max(econ.GDPGrowth, 0), gdpCap)/gdpCap)
	unempTerm := 100 * math.Min(math.Max(econ.Unemployment, 0), unemploymentCap) / unemploymentCap
	inflTerm := 100 * math.Min(math.Max(econ.Inflation, 0), inflationCap) / inflationCap
	rateTerm := 100 * math.Min(math.Max(econ.InterestRate, 0), interestCap) / interestCap

	return clamp100(gdpTerm*0.25 + unempTerm*0.30 + inflTerm*0.25 + rateTerm*0.20)
}

// marketConfidence is bounded [0,1]: data availability (saturating at
// cfg.FullHistoryPoints), inverse volatility, and economic stability.
func marketConfidence(mkt *model.MarketRecord, cfg Config) float64 {
	availability := math.Min(float64(len(mkt.PriceHistory))/float64(cfg.FullHistoryPoints), 1)

	// Inverse volatility: coefficient of variation from the population
	// standard deviation. Empty or single-point history has volatility 0,
	// so this term contributes fully.
	volatility := 0.0
	if len(mkt.PriceHistory) >= 2 {
		mean := meanOf(mkt.PriceHistory)
		if mean > 0 {
			volatility = math.Min(popStdDev(mkt.PriceHistory, mean)/mean, 1)
		}
	}

	stability := economicStability(mkt.Economic)

	conf := availability*0.4 + (1-volatility)*0.3 + stability*0.3
	return math.Min(1, math.Max(0, conf))
}

// economicStability sums weighted binary stable/unstable flags.
func economicStability(econ model.EconomicIndicators) float64 {
	var s float64
	if econ.GDPGrowth > stableGDPFloor {
		s += 0.25
	}
	if econ.Unemployment < stableUnemploymentCeil {
		s += 0.30
	}
	if econ.Inflation < stableInflationCeil {
		s += 0.25
	}
	if econ.InterestRate < stableInterestRateCeil {
		s += 0.20
	}
	return s
}

func meanOf(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// popStdDev is the population standard deviation around the given mean.
func popStdDev(vs []float64, mean float64) float64 {
	var sum float64
	for _, v := range vs {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vs)))
}
