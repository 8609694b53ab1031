package risk

import "math"

// Fixed breach limits, shared by every instrument and asset type
const (
	PnLLimit        = 500.0
	MarginLimit     = 5000.0
	VolatilityLimit = 0.03
)

// Metrics are the unrounded values a breach is judged on
type Metrics struct {
	PnL        float64
	Volatility float64
	Margin     float64
	Rate       float64
}

// BreachRule is one threshold condition
type BreachRule struct {
	Name    string
	Tripped func(m Metrics) bool
}

// BreachRules is the composite breach condition; any tripped rule flags the instrument
var BreachRules = []BreachRule{
	{Name: "pnl", Tripped: func(m Metrics) bool { return math.Abs(m.PnL) > PnLLimit }},
	{Name: "margin", Tripped: func(m Metrics) bool { return m.Margin > MarginLimit }},
	{Name: "volatility", Tripped: func(m Metrics) bool { return m.Volatility > VolatilityLimit }},
}

// TrippedRules returns the names of every rule m violates
func TrippedRules(m Metrics) []string {
	var tripped []string
	for _, rule := range BreachRules {
		if rule.Tripped(m) {
			tripped = append(tripped, rule.Name)
		}
	}
	return tripped
}

// IsBreach reports whether at least one rule is tripped
func IsBreach(m Metrics) bool {
	for _, rule := range BreachRules {
		if rule.Tripped(m) {
			return true
		}
	}
	return false
}
