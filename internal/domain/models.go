// Package domain provides core domain models and types.
package domain

import "time"

// DateLayout is the layout of RiskRecord.Date
const DateLayout = "2006-01-02"

// MinObservations is the minimum number of closes a series needs to be usable
const MinObservations = 5

// PortfolioEntry is a single position from the portfolio configuration
type PortfolioEntry struct {
	Symbol   string  `json:"symbol" yaml:"symbol"`
	Quantity float64 `json:"quantity" yaml:"quantity"` // Signed; negative for short positions
	Type     string  `json:"type" yaml:"type"`         // Asset classification (e.g. "stock", "etf")
}

// PricePoint is one daily close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is the recent daily history of one symbol, oldest first
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Closes returns the close prices in series order
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// RiskRecord is one persisted risk snapshot row.
// Rows have no identity beyond (symbol, date); reruns on the same day append duplicates.
type RiskRecord struct {
	Symbol     string  `json:"symbol" msgpack:"symbol"`
	Date       string  `json:"date" msgpack:"date"`
	PnL        float64 `json:"pnl" msgpack:"pnl"`
	Volatility float64 `json:"volatility" msgpack:"volatility"`
	Margin     float64 `json:"margin" msgpack:"margin"`
	Type       string  `json:"type" msgpack:"type"`
	Breach     bool    `json:"breach" msgpack:"breach"`
}

// SkipReason tags why an instrument produced no record
type SkipReason string

const (
	// SkipNoData - fetch returned nothing usable after all retries
	SkipNoData SkipReason = "no_data"
	// SkipInsufficientData - fewer than MinObservations closes
	SkipInsufficientData SkipReason = "insufficient_data"
	// SkipVolatilityFailed - rolling standard deviation undefined (window too short, NaN or Inf)
	SkipVolatilityFailed SkipReason = "volatility_failed"
)

// String returns a human-readable description used in logs
func (r SkipReason) String() string {
	switch r {
	case SkipNoData:
		return "no data after retries"
	case SkipInsufficientData:
		return "insufficient data"
	case SkipVolatilityFailed:
		return "volatility calculation failed"
	default:
		return string(r)
	}
}

// InstrumentResult is the outcome of evaluating one instrument.
// Exactly one of Record or Skip is set.
type InstrumentResult struct {
	Symbol string
	Record *RiskRecord
	Skip   SkipReason
}

// Evaluated returns a result carrying a computed record
func Evaluated(record RiskRecord) InstrumentResult {
	return InstrumentResult{Symbol: record.Symbol, Record: &record}
}

// Skipped returns a result carrying a skip reason
func Skipped(symbol string, reason SkipReason) InstrumentResult {
	return InstrumentResult{Symbol: symbol, Skip: reason}
}

// IsSkipped reports whether the instrument was skipped
func (r InstrumentResult) IsSkipped() bool {
	return r.Record == nil
}

// RunReport aggregates one pipeline run
type RunReport struct {
	RunID     string                `json:"run_id"`
	Date      string                `json:"date"`
	StartedAt time.Time             `json:"started_at"`
	Records   []RiskRecord          `json:"records"`
	Skipped   map[string]SkipReason `json:"skipped"`
	Inserted  int                   `json:"inserted"`
}

// NewRunReport creates an empty report for a run
func NewRunReport(runID string, startedAt time.Time) *RunReport {
	return &RunReport{
		RunID:     runID,
		Date:      startedAt.UTC().Format(DateLayout),
		StartedAt: startedAt,
		Records:   make([]RiskRecord, 0),
		Skipped:   make(map[string]SkipReason),
	}
}

// Add folds an instrument result into the report
func (r *RunReport) Add(result InstrumentResult) {
	if result.IsSkipped() {
		r.Skipped[result.Symbol] = result.Skip
		return
	}
	r.Records = append(r.Records, *result.Record)
}

// BreachCount returns how many records are flagged
func (r *RunReport) BreachCount() int {
	count := 0
	for _, rec := range r.Records {
		if rec.Breach {
			count++
		}
	}
	return count
}
