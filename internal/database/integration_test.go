package database

import (
	"path/filepath"
	"testing"
)

func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "integration.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Run("TablesExist", func(t *testing.T) {
		tables := []string{"users", "families", "sessions", "meals", "steps", "ingredients", "suggestion_logs"}

		for _, table := range tables {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			if err != nil {
				t.Errorf("Table %s not found: %v", table, err)
			}
		}
	})

	t.Run("MigrationsAreIdempotent", func(t *testing.T) {
		if err := db.RunMigrations("../../migrations"); err != nil {
			t.Errorf("Second migration run failed: %v", err)
		}
	})

	t.Run("ForeignKeysEnforced", func(t *testing.T) {
		var enabled int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
			t.Fatalf("Failed to read foreign_keys pragma: %v", err)
		}
		if enabled != 1 {
			t.Error("foreign_keys pragma should be on")
		}

		// Inserting a meal for a family that does not exist must fail
		_, err := db.Exec("INSERT INTO meals (family_id, date, title, portions, created_by) VALUES (?, ?, ?, ?, ?)",
			99999, "2025-01-15", "Geistermahl", 2, 99999)
		if err == nil {
			t.Error("Expected a foreign key violation")
		}
	})

	t.Run("ExecReturningID", func(t *testing.T) {
		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("Failed to begin transaction: %v", err)
		}
		defer tx.Rollback()

		id, err := tx.ExecReturningID("INSERT INTO families (name) VALUES (?)", "Testfamilie")
		if err != nil {
			t.Fatalf("ExecReturningID() error = %v", err)
		}
		if id <= 0 {
			t.Errorf("ExecReturningID() = %d, want a positive ID", id)
		}
	})
}
