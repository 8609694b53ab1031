package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/aristath/riskmonitor/internal/metrics"
	"github.com/aristath/riskmonitor/internal/modules/marketdata"
	"github.com/aristath/riskmonitor/internal/modules/risk"
	"github.com/aristath/riskmonitor/internal/sink"
	testingpkg "github.com/aristath/riskmonitor/internal/testing"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 10, 21, 30, 0, 0, time.UTC)

type fixture struct {
	client  *testingpkg.MockPriceHistoryClient
	source  *testingpkg.MockPortfolioSource
	sink    *testingpkg.MockSink
	metrics *metrics.Metrics
	service *Service
}

func newFixture(entries ...domain.PortfolioEntry) *fixture {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	f := &fixture{
		client:  testingpkg.NewMockPriceHistoryClient(),
		source:  &testingpkg.MockPortfolioSource{Entries: entries},
		sink:    testingpkg.NewMockSink(),
		metrics: metrics.New(),
	}

	fetcher := marketdata.NewFetcher(f.client, marketdata.Config{Retries: 3}, log)
	f.service = NewService(f.source, fetcher, risk.NewCalculator(log), f.sink, f.metrics, log)
	f.service.now = func() time.Time { return fixedNow }
	f.service.newRunID = func() string { return "run-1" }
	return f
}

func TestRun_SingleHealthyInstrument(t *testing.T) {
	f := newFixture(domain.PortfolioEntry{Symbol: "AAPL", Quantity: 10, Type: "stock"})
	f.client.SetSeries("AAPL", testingpkg.ReferenceCloses...)

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "2024-01-10", report.Date)
	assert.Equal(t, 1, report.Inserted)
	assert.Empty(t, report.Skipped)

	batches := f.sink.Batches()
	require.Len(t, batches, 1)
	assert.Equal(t, []domain.RiskRecord{{
		Symbol:     "AAPL",
		Date:       "2024-01-10",
		PnL:        -2.0,
		Volatility: 0.0143,
		Margin:     104.8,
		Type:       "stock",
		Breach:     false,
	}}, batches[0])

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Runs.WithLabelValues(metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RecordsInserted.WithLabelValues("mock")))
}

func TestRun_FetchFailureSkipsInstrumentOnly(t *testing.T) {
	f := newFixture(
		domain.PortfolioEntry{Symbol: "AAPL", Quantity: 10, Type: "stock"},
		domain.PortfolioEntry{Symbol: "DELISTED", Quantity: 5, Type: "stock"},
	)
	f.client.SetSeries("AAPL", testingpkg.ReferenceCloses...)
	f.client.SetResponses("DELISTED", testingpkg.HistoryResponse{Err: errors.New("404")})

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, f.client.Calls("DELISTED"))
	assert.Equal(t, domain.SkipNoData, report.Skipped["DELISTED"])
	assert.Equal(t, 1, report.Inserted)

	batches := f.sink.Batches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1)
	assert.Equal(t, "AAPL", batches[0][0].Symbol)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.InstrumentsSkipped.WithLabelValues("no_data")))
}

func TestRun_AllSkippedReturnsNoValidData(t *testing.T) {
	f := newFixture(
		domain.PortfolioEntry{Symbol: "SHORT", Quantity: 1, Type: "stock"},
		domain.PortfolioEntry{Symbol: "GONE", Quantity: 1, Type: "stock"},
	)
	f.client.SetSeries("SHORT", 1, 2, 3)
	f.client.SetResponses("GONE", testingpkg.HistoryResponse{})

	report, err := f.service.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoValidData)
	require.NotNil(t, report)
	assert.Equal(t, domain.SkipInsufficientData, report.Skipped["SHORT"])
	assert.Equal(t, domain.SkipNoData, report.Skipped["GONE"])
	assert.Empty(t, f.sink.Batches(), "sink must not be called")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Runs.WithLabelValues(metrics.OutcomeNoData)))
}

func TestRun_EmptyPortfolio(t *testing.T) {
	f := newFixture()

	_, err := f.service.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoValidData)
	assert.Empty(t, f.sink.Batches())
}

func TestRun_SinkRowErrors(t *testing.T) {
	f := newFixture(domain.PortfolioEntry{Symbol: "AAPL", Quantity: 10, Type: "stock"})
	f.client.SetSeries("AAPL", testingpkg.ReferenceCloses...)
	f.sink.SetError(&sink.InsertError{Sink: "mock", Rows: []sink.RowError{
		{Index: 0, Symbol: "AAPL", Errors: []string{"invalid"}},
	}})

	report, err := f.service.Run(context.Background())
	require.Error(t, err)

	var insertErr *sink.InsertError
	require.ErrorAs(t, err, &insertErr)
	assert.Equal(t, "AAPL", insertErr.Rows[0].Symbol)
	assert.Zero(t, report.Inserted)
	assert.Len(t, f.sink.Batches(), 1, "one batch attempt, no retry")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Runs.WithLabelValues(metrics.OutcomeFailed)))
}

func TestRun_PortfolioError(t *testing.T) {
	f := newFixture()
	f.source.Err = errors.New("entry 1: missing field \"type\"")

	_, err := f.service.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load portfolio")
	assert.NotErrorIs(t, err, ErrNoValidData)
	assert.Empty(t, f.sink.Batches())
}

func TestRun_BreachCounted(t *testing.T) {
	f := newFixture(domain.PortfolioEntry{Symbol: "VOL", Quantity: 1, Type: "crypto"})
	f.client.SetSeries("VOL", 100, 110, 95, 108, 90, 112)

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.BreachCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Breaches))
}
