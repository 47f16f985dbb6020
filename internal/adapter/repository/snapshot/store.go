// Package snapshot persists AppState as a single document in a slotted
// key-value store, keeping the previous document in a backup slot.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/simaogato/savespendshare-backend/internal/adapter/codec"
	"github.com/simaogato/savespendshare-backend/internal/domain"
)

// Slot names a stored document.
type Slot string

const (
	SlotCurrent Slot = "current"
	SlotBackup  Slot = "backup"
)

// ErrNotFound is returned by KV.Get when a slot holds nothing.
var ErrNotFound = errors.New("slot is empty")

// KV is the storage medium under Store.
type KV interface {
	Get(ctx context.Context, slot Slot) ([]byte, error)
	Put(ctx context.Context, slot Slot, data []byte) error
}

// Store implements domain.StateRepository over a KV.
type Store struct {
	kv     KV
	logger zerolog.Logger
}

// NewStore creates a snapshot store
func NewStore(kv KV, logger zerolog.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger.With().Str("component", "snapshot").Logger(),
	}
}

var _ domain.StateRepository = (*Store)(nil)

// Load returns the current snapshot, falling back to the backup when the
// current one is unreadable or invalid. A state restored from backup is
// written back as current.
func (s *Store) Load(ctx context.Context) (*domain.AppState, error) {
	state, currentErr := s.read(ctx, SlotCurrent)
	if currentErr == nil {
		return state, nil
	}
	if !recoverable(currentErr) {
		return nil, fmt.Errorf("failed to read current snapshot: %w", currentErr)
	}

	backup, backupErr := s.read(ctx, SlotBackup)
	if backupErr != nil && !recoverable(backupErr) {
		return nil, fmt.Errorf("failed to read backup snapshot: %w", backupErr)
	}
	if errors.Is(currentErr, ErrNotFound) && errors.Is(backupErr, ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if backupErr != nil {
		return nil, &domain.DataLossError{Current: currentErr, Backup: backupErr}
	}

	s.logger.Warn().Err(currentErr).Msg("current snapshot unusable, restored from backup")
	data, err := codec.Encode(backup)
	if err == nil {
		err = s.kv.Put(ctx, SlotCurrent, data)
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to rewrite restored snapshot")
	}
	return backup, nil
}

// recoverable reports whether a slot read failed because the slot is empty or
// holds an invalid document, as opposed to the medium being unavailable.
func recoverable(err error) bool {
	var structural *domain.StructuralIntegrityError
	return errors.Is(err, ErrNotFound) || errors.As(err, &structural)
}

func (s *Store) read(ctx context.Context, slot Slot) (*domain.AppState, error) {
	data, err := s.kv.Get(ctx, slot)
	if err != nil {
		return nil, err
	}
	state, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s snapshot: %w", slot, err)
	}
	return state, nil
}

// Persist writes the state in four steps:
//  1. Read the current document
//  2. Copy it to the backup slot
//  3. Write the new document as current
//  4. Read it back and compare
//
// A failure in 3 or 4 copies the backup slot back over current.
func (s *Store) Persist(ctx context.Context, state *domain.AppState) error {
	data, err := codec.Encode(state)
	if err != nil {
		return &domain.PersistError{Op: "encode", Err: err}
	}

	previous, err := s.kv.Get(ctx, SlotCurrent)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return &domain.PersistError{Op: "read current", Err: err}
	default:
		// Never overwrite a good backup with a document that cannot be loaded
		if _, decodeErr := codec.Decode(previous); decodeErr != nil {
			s.logger.Warn().Err(decodeErr).Msg("current snapshot invalid, keeping existing backup")
			break
		}
		if err := s.kv.Put(ctx, SlotBackup, previous); err != nil {
			return &domain.PersistError{Op: "write backup", Err: err}
		}
	}

	if err := s.write(ctx, data); err != nil {
		return s.rollback(ctx, err)
	}

	s.logger.Debug().Int("bytes", len(data)).Msg("snapshot persisted")
	return nil
}

func (s *Store) write(ctx context.Context, data []byte) error {
	if err := s.kv.Put(ctx, SlotCurrent, data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	stored, err := s.kv.Get(ctx, SlotCurrent)
	if err != nil {
		return fmt.Errorf("read back: %w", err)
	}
	if !bytes.Equal(stored, data) {
		return errors.New("read back: stored snapshot differs from written one")
	}
	return nil
}

func (s *Store) rollback(ctx context.Context, cause error) error {
	backup, err := s.kv.Get(ctx, SlotBackup)
	if errors.Is(err, ErrNotFound) {
		s.logger.Error().Err(cause).Msg("snapshot write failed with no backup to restore")
		return &domain.CriticalPersistenceError{Err: cause}
	}
	if err == nil {
		err = s.kv.Put(ctx, SlotCurrent, backup)
	}
	if err != nil {
		s.logger.Error().Err(cause).AnErr("restore_error", err).Msg("snapshot write failed and backup restore failed")
		return &domain.CriticalPersistenceError{Err: cause, RestoreErr: err}
	}
	s.logger.Warn().Err(cause).Msg("snapshot write failed, backup restored")
	return &domain.PersistError{Op: "write", Err: cause}
}
