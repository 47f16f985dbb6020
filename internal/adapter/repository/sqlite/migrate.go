package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// migrationsFS holds the snapshots table: one row per slot (current, backup)
// carrying the encoded household document.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable keeps the ledger's schema version apart from anything else
// sharing the database file.
const migrationsTable = "ledger_schema_migrations"

// RunMigrations creates or upgrades the snapshot slot table.
func RunMigrations(dbPath string) error {
	// Separate connection so closing the migrator leaves the KV connection open
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot database for migration: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}
	return nil
}
