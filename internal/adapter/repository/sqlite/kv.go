// Package sqlite stores snapshot slots in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/simaogato/savespendshare-backend/internal/adapter/repository/snapshot"

	_ "modernc.org/sqlite"
)

// KV implements snapshot.KV on the snapshots table
type KV struct {
	db *sqlx.DB
}

// NewKV opens the database at dbPath and migrates it
func NewKV(dbPath string) (*KV, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY between slot writes
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &KV{db: db}, nil
}

func (kv *KV) Close() error {
	if kv.db != nil {
		return kv.db.Close()
	}
	return nil
}

func (kv *KV) Get(ctx context.Context, slot snapshot.Slot) ([]byte, error) {
	var data []byte
	err := kv.db.GetContext(ctx, &data, `SELECT data FROM snapshots WHERE slot = ?`, string(slot))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, snapshot.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s snapshot: %w", slot, err)
	}
	return data, nil
}

func (kv *KV) Put(ctx context.Context, slot snapshot.Slot, data []byte) error {
	query := `
		INSERT INTO snapshots (slot, data, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT (slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`
	if _, err := kv.db.ExecContext(ctx, query, string(slot), data); err != nil {
		return fmt.Errorf("put %s snapshot: %w", slot, err)
	}
	return nil
}
