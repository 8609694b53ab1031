package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/aristath/riskmonitor/internal/domain"
)

// MockPriceHistoryClient is a scripted implementation of domain.PriceHistoryClient.
// Responses are consumed per symbol in order; the last response repeats.
type MockPriceHistoryClient struct {
	mu        sync.Mutex
	responses map[string][]HistoryResponse
	calls     map[string]int
}

// HistoryResponse is one scripted History result
type HistoryResponse struct {
	Points []domain.PricePoint
	Err    error
}

// NewMockPriceHistoryClient creates an empty mock; unknown symbols return an error
func NewMockPriceHistoryClient() *MockPriceHistoryClient {
	return &MockPriceHistoryClient{
		responses: make(map[string][]HistoryResponse),
		calls:     make(map[string]int),
	}
}

// SetSeries makes every call for symbol succeed with the given closes
func (m *MockPriceHistoryClient) SetSeries(symbol string, closes ...float64) {
	m.SetResponses(symbol, HistoryResponse{Points: PricePoints(closes...)})
}

// SetResponses scripts successive responses for symbol
func (m *MockPriceHistoryClient) SetResponses(symbol string, responses ...HistoryResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[symbol] = responses
}

// History returns the next scripted response
func (m *MockPriceHistoryClient) History(ctx context.Context, symbol string, period string) ([]domain.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := m.calls[symbol]
	m.calls[symbol] = call + 1

	responses, ok := m.responses[symbol]
	if !ok || len(responses) == 0 {
		return nil, fmt.Errorf("no data for %s", symbol)
	}
	if call >= len(responses) {
		call = len(responses) - 1
	}
	return responses[call].Points, responses[call].Err
}

// Calls returns how many times symbol was requested
func (m *MockPriceHistoryClient) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

// MockPortfolioSource is a static domain.PortfolioSource
type MockPortfolioSource struct {
	Entries []domain.PortfolioEntry
	Err     error
}

// Load returns the configured entries or error
func (m *MockPortfolioSource) Load() ([]domain.PortfolioEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Entries, nil
}

// MockSink records batches written to it
type MockSink struct {
	mu      sync.Mutex
	batches [][]domain.RiskRecord
	err     error
}

// NewMockSink creates a sink that accepts every batch
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Name identifies the mock
func (m *MockSink) Name() string {
	return "mock"
}

// SetError makes subsequent inserts fail
func (m *MockSink) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Insert records the batch, or returns the configured error
func (m *MockSink) Insert(ctx context.Context, records []domain.RiskRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := make([]domain.RiskRecord, len(records))
	copy(batch, records)
	m.batches = append(m.batches, batch)
	return m.err
}

// Batches returns every batch received, failed ones included
func (m *MockSink) Batches() [][]domain.RiskRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}
