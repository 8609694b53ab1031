// Package sink persists risk records produced by a monitoring run.
//
// Every backend writes a run's records as a single batch. Row-level rejections
// are reported through *InsertError and fail the whole call.
package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/aristath/riskmonitor/internal/domain"
)

// Sink writes one batch of risk records
type Sink interface {
	Name() string
	Insert(ctx context.Context, records []domain.RiskRecord) error
}

// Closer is implemented by sinks holding connections
type Closer interface {
	Close() error
}

// HealthChecker is implemented by sinks that can verify their connection
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RowError describes why one row of a batch was rejected
type RowError struct {
	Index  int      `json:"index"`
	Symbol string   `json:"symbol"`
	Errors []string `json:"errors"`
}

// InsertError is returned when the backend rejected one or more rows
type InsertError struct {
	Sink string
	Rows []RowError
}

func (e *InsertError) Error() string {
	if len(e.Rows) == 0 {
		return fmt.Sprintf("%s insert failed", e.Sink)
	}

	parts := make([]string, 0, len(e.Rows))
	for _, row := range e.Rows {
		parts = append(parts, fmt.Sprintf("row %d (%s): %s", row.Index, row.Symbol, strings.Join(row.Errors, "; ")))
	}
	return fmt.Sprintf("%s insert failed for %d row(s): %s", e.Sink, len(e.Rows), strings.Join(parts, ", "))
}

// symbolAt returns the symbol of records[i], or "" when out of range
func symbolAt(records []domain.RiskRecord, i int) string {
	if i < 0 || i >= len(records) {
		return ""
	}
	return records[i].Symbol
}
