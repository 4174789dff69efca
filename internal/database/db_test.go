package database

import (
	"path/filepath"
	"testing"
)

func TestNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "recipes.db")

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Schema bootstrap is idempotent.
	db2, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db2.Close()

	var count int
	err = db.SQL.Get(&count, "SELECT COUNT(*) FROM recipes")
	if err != nil {
		t.Fatalf("Expected recipes table to exist: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty recipes table, got %d rows", count)
	}
}
