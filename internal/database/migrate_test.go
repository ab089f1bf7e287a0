package database_test

import (
	"testing"

	"github.com/jmorrow/larder/internal/database"
)

func TestMigrate(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	// Running twice must be a no-op.
	if err := database.Migrate(db); err != nil {
		t.Fatalf("re-running migrations: %v", err)
	}

	tables := []string{"users", "lists", "list_members", "invitations", "items", "chores", "chore_completions", "device_tokens", "notifications", "api_tokens"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}
