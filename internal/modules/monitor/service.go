// Package monitor orchestrates a risk monitoring run: load the portfolio,
// fetch history, evaluate each position and write the records in one batch.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/aristath/riskmonitor/internal/metrics"
	"github.com/aristath/riskmonitor/internal/modules/risk"
	"github.com/aristath/riskmonitor/internal/sink"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoValidData is returned when no instrument produced a record.
// Nothing is written in that case.
var ErrNoValidData = errors.New("no valid data to insert")

// PriceFetcher returns recent history for a symbol, or false when none could be obtained
type PriceFetcher interface {
	Fetch(ctx context.Context, symbol string) (domain.PriceSeries, bool)
}

// Service runs the monitoring pipeline
type Service struct {
	portfolio  domain.PortfolioSource
	fetcher    PriceFetcher
	calculator *risk.Calculator
	sink       sink.Sink
	metrics    *metrics.Metrics
	now        func() time.Time
	newRunID   func() string

	mu  sync.Mutex // one run at a time
	log zerolog.Logger
}

// NewService creates a monitoring service
func NewService(
	portfolio domain.PortfolioSource,
	fetcher PriceFetcher,
	calculator *risk.Calculator,
	out sink.Sink,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Service {
	return &Service{
		portfolio:  portfolio,
		fetcher:    fetcher,
		calculator: calculator,
		sink:       out,
		metrics:    m,
		now:        time.Now,
		newRunID:   func() string { return uuid.New().String() },
		log:        log.With().Str("service", "monitor").Logger(),
	}
}

// Run evaluates the whole portfolio and writes the resulting records.
// The report is returned even when the run fails, reflecting what was computed.
// Returns ErrNoValidData when every instrument was skipped.
func (s *Service) Run(ctx context.Context) (*domain.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	startedAt := s.now()
	report := domain.NewRunReport(s.newRunID(), startedAt)
	log := s.log.With().Str("run_id", report.RunID).Logger()
	ctx = sink.WithRunID(ctx, report.RunID)

	defer func() {
		s.metrics.RunDuration.Observe(s.now().Sub(startedAt).Seconds())
		s.metrics.LastRunTimestamp.SetToCurrentTime()
	}()

	entries, err := s.portfolio.Load()
	if err != nil {
		s.metrics.Runs.WithLabelValues(metrics.OutcomeFailed).Inc()
		return report, fmt.Errorf("failed to load portfolio: %w", err)
	}

	log.Info().Int("positions", len(entries)).Str("date", report.Date).Msg("Starting risk run")

	for _, entry := range entries {
		result := s.evaluate(ctx, entry, startedAt)
		report.Add(result)

		if result.IsSkipped() {
			s.metrics.InstrumentsSkipped.WithLabelValues(string(result.Skip)).Inc()
			log.Warn().
				Str("symbol", result.Symbol).
				Str("reason", string(result.Skip)).
				Msgf("Skipping %s: %s", result.Symbol, result.Skip)
			continue
		}

		s.metrics.InstrumentsEvaluated.Inc()
		if result.Record.Breach {
			s.metrics.Breaches.Inc()
		}
	}

	if len(report.Records) == 0 {
		s.metrics.Runs.WithLabelValues(metrics.OutcomeNoData).Inc()
		log.Warn().Int("skipped", len(report.Skipped)).Msg("No valid data to insert")
		return report, ErrNoValidData
	}

	if err := s.sink.Insert(ctx, report.Records); err != nil {
		s.metrics.Runs.WithLabelValues(metrics.OutcomeFailed).Inc()
		log.Error().Err(err).Str("sink", s.sink.Name()).Int("records", len(report.Records)).Msg("Failed to write risk records")
		return report, fmt.Errorf("failed to write %d records to %s: %w", len(report.Records), s.sink.Name(), err)
	}

	report.Inserted = len(report.Records)
	s.metrics.RecordsInserted.WithLabelValues(s.sink.Name()).Add(float64(report.Inserted))
	s.metrics.Runs.WithLabelValues(metrics.OutcomeSuccess).Inc()

	log.Info().
		Int("inserted", report.Inserted).
		Int("skipped", len(report.Skipped)).
		Int("breaches", report.BreachCount()).
		Dur("duration", s.now().Sub(startedAt)).
		Msg("Risk run completed")

	return report, nil
}

func (s *Service) evaluate(ctx context.Context, entry domain.PortfolioEntry, runDate time.Time) domain.InstrumentResult {
	series, ok := s.fetcher.Fetch(ctx, entry.Symbol)
	if !ok {
		return domain.Skipped(entry.Symbol, domain.SkipNoData)
	}
	return s.calculator.Evaluate(series, entry, runDate)
}
