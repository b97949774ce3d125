package strategies

import "math"

// Trend labels the recent direction of the market.
type Trend string

const (
	TrendUp       Trend = "up"
	TrendDown     Trend = "down"
	TrendSideways Trend = "sideways"
)

// Conditions summarizes recent market behavior from the retained price
// history. Used by the threshold strategy to scale its spread and by the
// loop for position sizing.
type Conditions struct {
	VolatilityPct float64
	MomentumPct   float64
	Trend         Trend
	Confidence    float64
}

// trend flips only beyond +-0.2% momentum.
const trendMomentumPct = 0.2

// AnalyzeConditions computes volatility (stddev of simple returns),
// momentum (change from roughly five samples back), and trend over the
// given prices, oldest first. With fewer than ten samples it returns a
// calm-market default.
func AnalyzeConditions(prices []float64) Conditions {
	if len(prices) < 10 {
		return Conditions{
			VolatilityPct: 1.5,
			Trend:         TrendSideways,
			Confidence:    50,
		}
	}

	window := prices[len(prices)-10:]
	returns := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		returns = append(returns, (window[i]-window[i-1])/window[i-1])
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	volatility := math.Sqrt(variance) * 100

	ref := prices[len(prices)-5]
	current := prices[len(prices)-1]
	momentum := (current - ref) / ref * 100

	trend := TrendSideways
	switch {
	case momentum > trendMomentumPct:
		trend = TrendUp
	case momentum < -trendMomentumPct:
		trend = TrendDown
	}

	confidence := 50 + float64(len(prices))*2
	if confidence > 95 {
		confidence = 95
	}

	return Conditions{
		VolatilityPct: volatility,
		MomentumPct:   momentum,
		Trend:         trend,
		Confidence:    confidence,
	}
}
