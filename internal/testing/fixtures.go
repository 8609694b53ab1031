package testing

import (
	"time"

	"github.com/aristath/riskmonitor/internal/domain"
)

// FixtureStart is the date of the first point produced by PricePoints
var FixtureStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// ReferenceCloses is a six-day series whose evaluation with quantity 10 gives
// pnl -2.00, volatility 0.0143, margin 104.80 and no breach
var ReferenceCloses = []float64{100, 102, 101, 103, 105, 104.8}

// PricePoints builds daily points from closes, one day apart
func PricePoints(closes ...float64) []domain.PricePoint {
	points := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = domain.PricePoint{Date: FixtureStart.AddDate(0, 0, i), Close: c}
	}
	return points
}

// NewPortfolioFixtures returns a small mixed portfolio
func NewPortfolioFixtures() []domain.PortfolioEntry {
	return []domain.PortfolioEntry{
		{Symbol: "AAPL", Quantity: 10, Type: "stock"},
		{Symbol: "SPY", Quantity: -4, Type: "etf"},
		{Symbol: "BTC-USD", Quantity: 0.25, Type: "crypto"},
	}
}

// NewRiskRecordFixtures returns records as the calculator would emit them
func NewRiskRecordFixtures(date string) []domain.RiskRecord {
	return []domain.RiskRecord{
		{Symbol: "AAPL", Date: date, PnL: -2.0, Volatility: 0.0143, Margin: 104.8, Type: "stock", Breach: false},
		{Symbol: "TSLA", Date: date, PnL: -812.5, Volatility: 0.0412, Margin: 9120.4, Type: "stock", Breach: true},
	}
}
