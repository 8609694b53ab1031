// Package marketdata retrieves recent price history with bounded retry.
package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/rs/zerolog"
)

// ErrEmptyHistory is returned for a fetch that succeeded with no bars
var ErrEmptyHistory = errors.New("empty price history")

// Defaults for the retry budget
const (
	DefaultPeriod     = "7d"
	DefaultRetries    = 3
	DefaultRetryDelay = 2 * time.Second
)

// FailureObserver is notified of every failed attempt (metrics hook)
type FailureObserver func(symbol string, attempt int, err error)

// Config controls the fetcher's retry budget
type Config struct {
	Period     string
	Retries    int
	RetryDelay time.Duration
}

// Fetcher wraps a PriceHistoryClient with fixed-delay retries
type Fetcher struct {
	client    domain.PriceHistoryClient
	cfg       Config
	onFailure FailureObserver
	log       zerolog.Logger
}

// NewFetcher creates a fetcher. Zero-valued config fields take the defaults.
func NewFetcher(client domain.PriceHistoryClient, cfg Config, log zerolog.Logger) *Fetcher {
	if cfg.Period == "" {
		cfg.Period = DefaultPeriod
	}
	if cfg.Retries <= 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}

	return &Fetcher{
		client: client,
		cfg:    cfg,
		log:    log.With().Str("component", "market_data_fetcher").Logger(),
	}
}

// SetFailureObserver registers a callback for failed attempts
func (f *Fetcher) SetFailureObserver(observer FailureObserver) {
	f.onFailure = observer
}

// Fetch returns the recent price series for symbol, or false once every attempt failed.
// An empty history counts as a failed attempt. Exhaustion is not an error for the run,
// the caller skips the instrument.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) (domain.PriceSeries, bool) {
	for attempt := 1; attempt <= f.cfg.Retries; attempt++ {
		points, err := f.client.History(ctx, symbol, f.cfg.Period)
		if err == nil && len(points) == 0 {
			err = ErrEmptyHistory
		}
		if err == nil {
			return domain.PriceSeries{Symbol: symbol, Points: points}, true
		}

		f.log.Warn().
			Err(err).
			Str("symbol", symbol).
			Int("attempt", attempt).
			Int("max_attempts", f.cfg.Retries).
			Msg("Price history fetch attempt failed")

		if f.onFailure != nil {
			f.onFailure(symbol, attempt, err)
		}

		// Delay follows every failed attempt, the last one included
		if !wait(ctx, f.cfg.RetryDelay) {
			f.log.Warn().Str("symbol", symbol).Msg("Fetch cancelled while waiting to retry")
			return domain.PriceSeries{}, false
		}
	}

	return domain.PriceSeries{}, false
}

// wait sleeps for d unless ctx ends first
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
