package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema migrations in version order.
// Already-applied versions are recorded in schema_migrations and
// skipped, so running it on every startup is safe. Each migration runs
// in its own transaction together with its bookkeeping row.
func Migrate(database *sql.DB) error {
	if _, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("listing embedded migrations: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			pending = append(pending, entry.Name())
		}
	}
	sort.Strings(pending)

	for _, filename := range pending {
		version := migrationVersion(filename)

		var applied int
		if err := database.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + filename)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", filename, err)
		}

		transaction, err := database.Begin()
		if err != nil {
			return fmt.Errorf("opening transaction for migration %d: %w", version, err)
		}

		if _, err := transaction.Exec(string(content)); err != nil {
			transaction.Rollback()
			return fmt.Errorf("applying migration %s: %w", filename, err)
		}

		if _, err := transaction.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			transaction.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := transaction.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}

		slog.Info("schema migration applied", "version", version, "file", filename)
	}

	return nil
}

// migrationVersion reads the numeric prefix of a migration filename,
// e.g. 0001 from 0001_init.up.sql.
func migrationVersion(filename string) int {
	var version int
	fmt.Sscanf(filename, "%d_", &version)
	return version
}
