package risk

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Output precision of persisted values
const (
	PnLPlaces        = 2
	VolatilityPlaces = 4
	MarginPlaces     = 2
)

// Round rounds the exact binary value half-to-even at the given decimal places,
// so 2.675 (stored as 2.67499999...) gives 2.67.
// NaN and infinities are returned unchanged.
func Round(value float64, places int32) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	return exactDecimal(value).RoundBank(places).InexactFloat64()
}

// exactDecimal returns the decimal expansion of value with no digits lost.
// value = m * 2^exp with an integral 53-bit m, and 2^-k = 5^k * 10^-k.
func exactDecimal(value float64) decimal.Decimal {
	frac, exp := math.Frexp(value)
	m := big.NewInt(int64(frac * (1 << 53)))
	exp -= 53

	if exp >= 0 {
		return decimal.NewFromBigInt(m.Lsh(m, uint(exp)), 0)
	}

	k := int64(-exp)
	pow := new(big.Int).Exp(big.NewInt(5), big.NewInt(k), nil)
	return decimal.NewFromBigInt(m.Mul(m, pow), int32(-k))
}
