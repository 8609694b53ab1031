package risk

import (
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// VolatilityWindow is the number of returns in the rolling window
const VolatilityWindow = 5

// Returns computes period-over-period fractional change of closes.
// The result has the same length as closes; index 0 is NaN (no prior close),
// and a zero previous close yields NaN rather than a silent zero.
func Returns(closes []float64) []float64 {
	if len(closes) == 0 {
		return nil
	}

	returns := talib.Rocp(closes, 1)
	returns[0] = math.NaN()
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			returns[i] = math.NaN()
		}
	}

	return returns
}

// RollingStdDev returns the sample standard deviation of the last window values.
// ok is false when the window is short or any value in it is NaN or infinite.
func RollingStdDev(values []float64, window int) (float64, bool) {
	if window < 2 || len(values) < window {
		return math.NaN(), false
	}

	tail := values[len(values)-window:]
	for _, v := range tail {
		if !isFinite(v) {
			return math.NaN(), false
		}
	}

	sd := stat.StdDev(tail, nil)
	if !isFinite(sd) {
		return math.NaN(), false
	}

	return sd, true
}

// Volatility is the rolling standard deviation of returns evaluated at the latest close
func Volatility(closes []float64) (float64, bool) {
	return RollingStdDev(Returns(closes), VolatilityWindow)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
