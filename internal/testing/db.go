// Package testing provides testing utilities and helpers for the risk monitor.
package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/riskmonitor/internal/database"
)

// NewTestDB creates a temporary SQLite database with the named schema applied.
// The database is closed and removed when the test finishes.
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	dir := t.TempDir()
	db, err := database.New(database.Config{
		Path: filepath.Join(dir, name+".db"),
		Name: name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		_ = os.RemoveAll(dir)
	})

	return db
}
