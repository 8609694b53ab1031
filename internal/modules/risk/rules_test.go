package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarginRate_Tiers(t *testing.T) {
	tests := []struct {
		volatility float64
		rate       float64
	}{
		{0, 0.05},
		{0.0099999, 0.05},
		{0.01, 0.10}, // bound resolves to the higher tier
		{0.015, 0.10},
		{0.0199999, 0.10},
		{0.02, 0.20}, // bound resolves to the higher tier
		{0.5, 0.20},
		{math.Inf(1), 0.20},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.rate, MarginRate(tt.volatility), "volatility %v", tt.volatility)
	}
}

func TestMargin_NotFloored(t *testing.T) {
	assert.InDelta(t, -50.0, Margin(100, -10, 0.001), 1e-9)
	assert.InDelta(t, 200.0, Margin(100, 10, 0.05), 1e-9)
}

func TestIsBreach(t *testing.T) {
	tests := []struct {
		name    string
		metrics Metrics
		want    bool
		rules   []string
	}{
		{"all clear", Metrics{PnL: 500, Margin: 5000, Volatility: 0.03}, false, nil},
		{"loss over limit", Metrics{PnL: -500.01}, true, []string{"pnl"}},
		{"gain over limit", Metrics{PnL: 500.01}, true, []string{"pnl"}},
		{"margin over limit", Metrics{Margin: 5000.01}, true, []string{"margin"}},
		{"negative margin never breaches", Metrics{Margin: -100000}, false, nil},
		{"volatility over limit", Metrics{Volatility: 0.0300001}, true, []string{"volatility"}},
		{"every rule", Metrics{PnL: 1000, Margin: 10000, Volatility: 0.5}, true, []string{"pnl", "margin", "volatility"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBreach(tt.metrics))
			assert.Equal(t, tt.rules, TrippedRules(tt.metrics))
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 104.8, Round(104.80000000000001, MarginPlaces))
	assert.Equal(t, -2.0, Round(-2.0000000000000284, PnLPlaces))
	assert.Equal(t, 0.0143, Round(0.014295515727334077, VolatilityPlaces))
	assert.Equal(t, 0.12, Round(0.125, 2)) // half to even
	assert.Equal(t, 2.67, Round(2.675, 2))  // stored below the tie
	assert.Equal(t, 0.0001, Round(0.00015, 4))
	assert.Equal(t, 0.015, Round(0.0145, 3)) // stored above the tie
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
	assert.True(t, math.IsInf(Round(math.Inf(-1), 2), -1))
}

func TestExactDecimal(t *testing.T) {
	assert.Equal(t, "0.125", exactDecimal(0.125).String())
	assert.Equal(t, "-3072", exactDecimal(-3072).String())
	assert.Equal(t, "0", exactDecimal(0).String())
	assert.Equal(t, "2.67499999999999982236431605997495353221893310546875", exactDecimal(2.675).String())
}

func TestRound_Idempotent(t *testing.T) {
	values := []float64{-2.0000000000000284, 104.80000000000001, 0.014295515727334077, 1234.5678, -0.005, 99.995}
	for _, v := range values {
		for _, places := range []int32{PnLPlaces, VolatilityPlaces} {
			once := Round(v, places)
			assert.Equal(t, once, Round(once, places), "value %v places %d", v, places)
		}
	}
}

func TestReturns(t *testing.T) {
	returns := Returns([]float64{100, 110, 99})
	assert.True(t, math.IsNaN(returns[0]))
	assert.InDelta(t, 0.10, returns[1], 1e-12)
	assert.InDelta(t, -0.10, returns[2], 1e-12)

	assert.Nil(t, Returns(nil))
}

func TestRollingStdDev(t *testing.T) {
	sd, ok := RollingStdDev([]float64{99, 1, 2, 3, 4, 5}, 5)
	assert.True(t, ok)
	assert.InDelta(t, math.Sqrt(2.5), sd, 1e-12) // sample (n-1) deviation

	_, ok = RollingStdDev([]float64{1, 2, 3}, 5)
	assert.False(t, ok)

	_, ok = RollingStdDev([]float64{1, 2, math.Inf(1), 4, 5}, 5)
	assert.False(t, ok)
}
