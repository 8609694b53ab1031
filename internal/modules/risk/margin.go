package risk

import "math"

// MarginTier applies Rate to volatilities strictly below Below
type MarginTier struct {
	Below float64
	Rate  float64
}

// MarginTiers is evaluated top to bottom, first match wins.
// A volatility exactly on a bound falls into the next (higher) tier.
var MarginTiers = []MarginTier{
	{Below: 0.01, Rate: 0.05},
	{Below: 0.02, Rate: 0.10},
	{Below: math.Inf(1), Rate: 0.20},
}

// MarginRate returns the rate of the first tier whose bound exceeds volatility
func MarginRate(volatility float64) float64 {
	for _, tier := range MarginTiers {
		if volatility < tier.Below {
			return tier.Rate
		}
	}
	return MarginTiers[len(MarginTiers)-1].Rate
}

// Margin is latest close x quantity x tier rate.
// Not floored: a short position yields a negative margin.
func Margin(latestClose, quantity, volatility float64) float64 {
	return latestClose * quantity * MarginRate(volatility)
}
