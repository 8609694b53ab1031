// Package risk derives per-position risk metrics from recent daily closes.
package risk

import (
	"time"

	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/rs/zerolog"
)

// Calculator turns a price series and a position into a risk record or a skip
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates a risk calculator
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{
		log: log.With().Str("component", "risk_calculator").Logger(),
	}
}

// Compute derives unrounded metrics from closes (oldest first).
// The skip reason is empty when metrics are usable.
func Compute(closes []float64, quantity float64) (Metrics, domain.SkipReason) {
	if len(closes) < domain.MinObservations {
		return Metrics{}, domain.SkipInsufficientData
	}

	latest := closes[len(closes)-1]
	previous := closes[len(closes)-2]

	volatility, ok := Volatility(closes)
	if !ok {
		return Metrics{}, domain.SkipVolatilityFailed
	}

	rate := MarginRate(volatility)

	return Metrics{
		PnL:        (latest - previous) * quantity,
		Volatility: volatility,
		Margin:     latest * quantity * rate,
		Rate:       rate,
	}, ""
}

// Evaluate produces the instrument result for one position on runDate.
// Breach and tiering use unrounded values; rounding happens once, here.
func (c *Calculator) Evaluate(series domain.PriceSeries, entry domain.PortfolioEntry, runDate time.Time) domain.InstrumentResult {
	metrics, skip := Compute(series.Closes(), entry.Quantity)
	if skip != "" {
		return domain.Skipped(entry.Symbol, skip)
	}

	record := domain.RiskRecord{
		Symbol:     entry.Symbol,
		Date:       runDate.UTC().Format(domain.DateLayout),
		PnL:        Round(metrics.PnL, PnLPlaces),
		Volatility: Round(metrics.Volatility, VolatilityPlaces),
		Margin:     Round(metrics.Margin, MarginPlaces),
		Type:       entry.Type,
		Breach:     IsBreach(metrics),
	}

	if record.Breach {
		c.log.Info().
			Str("symbol", entry.Symbol).
			Strs("rules", TrippedRules(metrics)).
			Float64("pnl", metrics.PnL).
			Float64("volatility", metrics.Volatility).
			Float64("margin", metrics.Margin).
			Msg("Risk breach")
	} else {
		c.log.Debug().
			Str("symbol", entry.Symbol).
			Float64("volatility", metrics.Volatility).
			Float64("margin_rate", metrics.Rate).
			Msg("Risk evaluated")
	}

	return domain.Evaluated(record)
}
