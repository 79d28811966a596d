// Package testutil provides shared test helpers: an isolated in-memory
// database and builders for realistic transaction histories.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/storage"
)

// TestDB represents a migrated test database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustSave stores transactions or fails the test.
func (db *TestDB) MustSave(transactions ...model.Transaction) {
	db.t.Helper()

	if _, err := db.Storage.SaveTransactions(context.Background(), transactions); err != nil {
		db.t.Fatalf("failed to save transactions: %v", err)
	}
}
