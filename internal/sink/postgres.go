package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// DefaultPostgresTable is used when no table is configured
const DefaultPostgresTable = "risk_records"

const postgresColumns = 7

// PostgresSink writes records with a single multi-row INSERT
type PostgresSink struct {
	db    *sql.DB
	table string
	log   zerolog.Logger
}

// OpenPostgresSink connects to dsn and verifies the connection
func OpenPostgresSink(ctx context.Context, dsn, table string, log zerolog.Logger) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return NewPostgresSink(db, table, log), nil
}

// NewPostgresSink wraps an open connection pool
func NewPostgresSink(db *sql.DB, table string, log zerolog.Logger) *PostgresSink {
	if table == "" {
		table = DefaultPostgresTable
	}
	return &PostgresSink{
		db:    db,
		table: table,
		log:   log.With().Str("component", "postgres_sink").Str("table", table).Logger(),
	}
}

// Name returns the sink kind
func (s *PostgresSink) Name() string {
	return "postgres"
}

// Insert writes every record in one statement
func (s *PostgresSink) Insert(ctx context.Context, records []domain.RiskRecord) error {
	if len(records) == 0 {
		return nil
	}

	query, args := buildInsert(s.table, records)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("failed to insert into %s (%s): %w", s.table, pqErr.Code.Name(), err)
		}
		return fmt.Errorf("failed to insert into %s: %w", s.table, err)
	}

	s.log.Debug().Int("rows", len(records)).Msg("Rows inserted")
	return nil
}

// Ping checks that the database is reachable
func (s *PostgresSink) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool
func (s *PostgresSink) Close() error {
	return s.db.Close()
}

// buildInsert renders a multi-row INSERT with $n placeholders.
// The table may be schema-qualified ("risk.records").
func buildInsert(table string, records []domain.RiskRecord) (string, []interface{}) {
	query := fmt.Sprintf(`INSERT INTO %s
		(symbol, date, pnl, volatility, margin, type, breach)
		VALUES `, quoteTable(table))

	values := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*postgresColumns)

	for i, r := range records {
		base := i * postgresColumns
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		args = append(args, r.Symbol, r.Date, r.PnL, r.Volatility, r.Margin, r.Type, r.Breach)
	}

	return query + strings.Join(values, ", "), args
}

func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
