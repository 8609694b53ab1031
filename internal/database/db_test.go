package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string) *DB {
	t.Helper()
	db, err := New(Config{
		Path: filepath.Join(t.TempDir(), "nested", name+".db"),
		Name: name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_CreatesDirectoryAndPings(t *testing.T) {
	db := newTestDB(t, "risk")

	assert.True(t, filepath.IsAbs(db.Path()))
	assert.NoError(t, db.QuickCheck(context.Background()))
}

func TestBuildConnectionString(t *testing.T) {
	ledger := buildConnectionString("/data/risk.db")
	assert.Contains(t, ledger, "/data/risk.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, ledger, "synchronous(FULL)")
	assert.Contains(t, ledger, "auto_vacuum(NONE)")
	assert.Contains(t, ledger, "busy_timeout(5000)")

	memory := buildConnectionString("file:mem?mode=memory")
	assert.Contains(t, memory, "file:mem?mode=memory&_pragma=journal_mode(WAL)")
}

func TestMigrate_RiskSchema(t *testing.T) {
	db := newTestDB(t, "risk")
	require.NoError(t, db.Migrate())

	// Idempotent
	require.NoError(t, db.Migrate())

	_, err := db.Conn().ExecContext(context.Background(), `
		INSERT INTO risk_records (symbol, date, pnl, volatility, margin, type, breach, inserted_at)
		VALUES ('AAPL', '2024-01-02', -2.0, 0.0143, 104.8, 'stock', 0, 0)`)
	require.NoError(t, err)
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db := newTestDB(t, "scratch")
	assert.NoError(t, db.Migrate())
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t, "risk")
	require.NoError(t, db.Migrate())

	insert := func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO risk_records (symbol, date, pnl, volatility, margin, type, breach, inserted_at)
			VALUES ('MSFT', '2024-01-02', 1, 0.01, 10, 'stock', 1, 0)`)
		return err
	}

	t.Run("commits on success", func(t *testing.T) {
		require.NoError(t, WithTransaction(db.Conn(), insert))
		assert.Equal(t, 1, countRows(t, db))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			if err := insert(tx); err != nil {
				return err
			}
			return errors.New("boom")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		assert.Equal(t, 1, countRows(t, db))
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_ = insert(tx)
			panic("unexpected")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic in transaction")
		assert.Equal(t, 1, countRows(t, db))
	})

	t.Run("nil connection", func(t *testing.T) {
		assert.Error(t, WithTransaction(nil, insert))
	})
}

func countRows(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM risk_records`).Scan(&n))
	return n
}
