package domain

import "context"

// PriceHistoryClient fetches recent daily closes for a symbol.
// period uses the market data provider's notation (e.g. "7d").
type PriceHistoryClient interface {
	History(ctx context.Context, symbol string, period string) ([]PricePoint, error)
}

// PortfolioSource provides the list of positions to evaluate
type PortfolioSource interface {
	Load() ([]PortfolioEntry, error)
}
