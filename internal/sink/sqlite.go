package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/riskmonitor/internal/database"
	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/rs/zerolog"
)

// SQLiteDatabaseName selects the embedded risk schema
const SQLiteDatabaseName = "risk"

const sqliteInsert = `INSERT INTO risk_records
	(symbol, date, pnl, volatility, margin, type, breach, inserted_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteSink appends records to a local ledger database
type SQLiteSink struct {
	db  *database.DB
	now func() time.Time
	log zerolog.Logger
}

// OpenSQLiteSink opens (and migrates) the risk database at path
func OpenSQLiteSink(path string, log zerolog.Logger) (*SQLiteSink, error) {
	db, err := database.New(database.Config{
		Path: path,
		Name: SQLiteDatabaseName,
	})
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate %s database: %w", SQLiteDatabaseName, err)
	}

	return NewSQLiteSink(db, log), nil
}

// NewSQLiteSink wraps an already migrated database
func NewSQLiteSink(db *database.DB, log zerolog.Logger) *SQLiteSink {
	return &SQLiteSink{
		db:  db,
		now: time.Now,
		log: log.With().Str("component", "sqlite_sink").Str("path", db.Path()).Logger(),
	}
}

// Name returns the sink kind
func (s *SQLiteSink) Name() string {
	return "sqlite"
}

// Insert writes all records in one transaction
func (s *SQLiteSink) Insert(ctx context.Context, records []domain.RiskRecord) error {
	if len(records) == 0 {
		return nil
	}

	insertedAt := s.now().Unix()
	err := database.WithTransactionContext(ctx, s.db.Conn(), func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, sqliteInsert)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, r := range records {
			breach := 0
			if r.Breach {
				breach = 1
			}
			if _, err := stmt.ExecContext(ctx, r.Symbol, r.Date, r.PnL, r.Volatility, r.Margin, r.Type, breach, insertedAt); err != nil {
				return &InsertError{Sink: s.Name(), Rows: []RowError{{
					Index:  i,
					Symbol: r.Symbol,
					Errors: []string{err.Error()},
				}}}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug().Int("rows", len(records)).Msg("Rows inserted")
	return nil
}

// Ping checks that the database is reachable
func (s *SQLiteSink) Ping(ctx context.Context) error {
	return s.db.QuickCheck(ctx)
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
