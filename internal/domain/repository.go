package domain

import "context"

// StateRepository defines the interface for snapshot persistence operations
type StateRepository interface {
	// Load retrieves the persisted snapshot.
	// Returns ErrNotFound on first run and *DataLossError when neither the
	// current snapshot nor its backup passes structural validation.
	Load(ctx context.Context) (*AppState, error)

	// Persist durably stores the snapshot, keeping the previous one as backup.
	// Returns *PersistError or *CriticalPersistenceError on failure.
	Persist(ctx context.Context, state *AppState) error
}
