// Package testutil provides migrated test databases and ledger row fixtures.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
)

// TestDB is a migrated SQLite database that is closed when the test ends.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated database in the test's temp dir.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.Seed("receipts", testutil.NewReceipts().Add("2024-03-01", "Martin Dupont", 25).Rows()...)
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return OpenTestDB(t, filepath.Join(t.TempDir(), "books.db"))
}

// OpenTestDB opens and migrates the database at path, which may already
// have been written by the code under test.
func OpenTestDB(t *testing.T, path string) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return &TestDB{Storage: store, t: t}
}

// Seed replaces the rows of view.
func (db *TestDB) Seed(view string, rows ...grid.Row) *TestDB {
	db.t.Helper()
	if err := db.Storage.SaveRows(context.Background(), view, rows); err != nil {
		db.t.Fatalf("failed to seed %s: %v", view, err)
	}
	return db
}

// MustRows returns the stored rows of view or fails the test.
func (db *TestDB) MustRows(view string) []grid.Row {
	db.t.Helper()
	rows, err := db.Storage.LoadRows(context.Background(), view)
	if err != nil {
		db.t.Fatalf("failed to load %s: %v", view, err)
	}
	return rows
}

// MustChoices returns the amended choice lists of view or fails the test.
func (db *TestDB) MustChoices(view string) map[string][]string {
	db.t.Helper()
	choices, err := db.Storage.LoadChoices(context.Background(), view)
	if err != nil {
		db.t.Fatalf("failed to load %s choices: %v", view, err)
	}
	return choices
}
