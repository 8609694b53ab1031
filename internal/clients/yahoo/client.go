// Package yahoo provides daily price history from Yahoo Finance via go-yfinance.
package yahoo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// historyFunc fetches raw bars for a symbol
type historyFunc func(symbol string, params models.HistoryParams) ([]models.Bar, error)

// Client implements domain.PriceHistoryClient using go-yfinance
type Client struct {
	history historyFunc
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		history: fetchHistory,
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

func fetchHistory(symbol string, params models.HistoryParams) ([]models.Bar, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	return t.History(params)
}

// History returns daily closes for the period, oldest first.
// The library call itself is not cancellable; ctx is checked before it starts.
func (c *Client) History(ctx context.Context, symbol string, period string) ([]domain.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}

	params := models.HistoryParams{
		Period:     period,
		Interval:   "1d",
		AutoAdjust: true,
	}

	bars, err := c.history(symbol, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get historical prices for %s: %w", symbol, err)
	}

	points := make([]domain.PricePoint, 0, len(bars))
	for _, bar := range bars {
		points = append(points, domain.PricePoint{
			Date:  bar.Date.UTC(),
			Close: bar.Close,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	c.log.Debug().
		Str("symbol", symbol).
		Str("period", period).
		Int("bars", len(points)).
		Msg("Fetched price history")

	return points, nil
}
