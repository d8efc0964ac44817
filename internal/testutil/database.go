// Package testutil provides shared fixtures for lensline tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/lensline/internal/storage"
)

// SetupTestDB creates a migrated in-memory database that is closed when the
// test ends. The result serves as both KeyValueStore and HistoryJournal.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	store := analysis.NewStore(remote, analysis.WithJournal(db))
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	db, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		_ = db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
