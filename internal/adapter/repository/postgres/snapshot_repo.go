package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simaogato/savespendshare-backend/internal/adapter/repository/snapshot"
)

const createSnapshotsTable = `
	CREATE TABLE IF NOT EXISTS ledger_snapshots (
		household  TEXT NOT NULL,
		slot       TEXT NOT NULL,
		data       BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (household, slot)
	)
`

// snapshotRepository implements snapshot.KV. Several households can share
// one database; each owns its own pair of slots.
type snapshotRepository struct {
	db        *DB
	household string
}

// NewSnapshotRepository creates the table if needed and returns a KV scoped to household
func NewSnapshotRepository(ctx context.Context, db *DB, household string) (snapshot.KV, error) {
	if _, err := db.ExecContext(ctx, createSnapshotsTable); err != nil {
		return nil, fmt.Errorf("failed to create ledger_snapshots table: %w", err)
	}
	return &snapshotRepository{db: db, household: household}, nil
}

// Get retrieves the document stored in a slot
func (r *snapshotRepository) Get(ctx context.Context, slot snapshot.Slot) ([]byte, error) {
	query := `
		SELECT data
		FROM ledger_snapshots
		WHERE household = $1 AND slot = $2
	`

	var data []byte
	err := r.db.GetContext(ctx, &data, query, r.household, string(slot))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, snapshot.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s snapshot: %w", slot, err)
	}
	return data, nil
}

// Put upserts the document stored in a slot
func (r *snapshotRepository) Put(ctx context.Context, slot snapshot.Slot, data []byte) error {
	query := `
		INSERT INTO ledger_snapshots (household, slot, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (household, slot)
		DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, r.household, string(slot), data); err != nil {
		return fmt.Errorf("failed to put %s snapshot: %w", slot, err)
	}
	return nil
}
