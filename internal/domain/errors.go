package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by repositories when nothing has been persisted yet.
var ErrNotFound = errors.New("state not found")

// ValidationError reports malformed or missing operation input.
// The operation is aborted and state is unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// InsufficientFundsError is returned when spending would overdraw a bucket.
type InsufficientFundsError struct {
	Bucket    Bucket
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance in %s bucket. Current balance: $%s, requested: $%s",
		e.Bucket, e.Balance.StringFixed(2), e.Requested.StringFixed(2))
}

// UndoNotEligibleError is returned when the newest log entries are not a
// complete, non catch-up allowance set.
type UndoNotEligibleError struct {
	Reason string
}

func (e *UndoNotEligibleError) Error() string {
	return "cannot undo: " + e.Reason
}

// StructuralIntegrityError reports a persisted snapshot that fails schema validation.
type StructuralIntegrityError struct {
	Path   string
	Reason string
}

func (e *StructuralIntegrityError) Error() string {
	if e.Path == "" {
		return "invalid data structure: " + e.Reason
	}
	return fmt.Sprintf("invalid data structure at %s: %s", e.Path, e.Reason)
}

// DataLossError is returned when neither the current snapshot nor its backup
// could be loaded. The caller starts from an empty state.
type DataLossError struct {
	Current error
	Backup  error
}

func (e *DataLossError) Error() string {
	return fmt.Sprintf("unable to load saved data (current: %v, backup: %v)", e.Current, e.Backup)
}

func (e *DataLossError) Unwrap() []error {
	return []error{e.Current, e.Backup}
}

// PersistError reports a failed write or read-back verification whose
// rollback to the backup snapshot succeeded.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist state (%s): %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// CriticalPersistenceError means the write failed and the backup could not be
// restored either. Data is only safe in memory until this is resolved.
type CriticalPersistenceError struct {
	Err        error
	RestoreErr error
}

func (e *CriticalPersistenceError) Error() string {
	if e.RestoreErr == nil {
		return fmt.Sprintf("critical: unable to save data and no backup available: %v", e.Err)
	}
	return fmt.Sprintf("critical: unable to save data (%v) or restore backup (%v)", e.Err, e.RestoreErr)
}

func (e *CriticalPersistenceError) Unwrap() []error {
	return []error{e.Err, e.RestoreErr}
}
