package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind classifies a log entry.
type TransactionKind string

const (
	KindManualAddition TransactionKind = "manual_addition"
	KindDeduction      TransactionKind = "deduction"
	KindAllowance      TransactionKind = "allowance"
	KindGoalCompleted  TransactionKind = "goal_completed"
	KindBirthday       TransactionKind = "birthday"
	KindProfileUpdate  TransactionKind = "profile_update"
	KindUndoAllowance  TransactionKind = "undo_allowance"
)

// Kinds lists every transaction kind.
var Kinds = []TransactionKind{
	KindManualAddition,
	KindDeduction,
	KindAllowance,
	KindGoalCompleted,
	KindBirthday,
	KindProfileUpdate,
	KindUndoAllowance,
}

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// CatchUpMarker tags allowance descriptions written by missed-period reconciliation.
const CatchUpMarker = "(catch-up)"

// SystemActorName is the child name recorded on transactions not attributed to a child.
const SystemActorName = "System"

// Transaction is an immutable log entry. ChildID is a weak reference: the
// child may be gone later, ChildName stays authoritative for display.
type Transaction struct {
	ID          uuid.UUID
	Timestamp   time.Time
	ChildID     uuid.UUID // uuid.Nil for system transactions
	ChildName   string
	Bucket      Bucket
	Amount      decimal.Decimal // ABSOLUTE VALUE, sign implied by Kind
	Description string
	Kind        TransactionKind
	// BatchID groups the allowance transactions written by one payout.
	// uuid.Nil when not part of a payout.
	BatchID uuid.UUID
}

// IsCatchUp reports whether t is an allowance issued by catch-up reconciliation.
func (t *Transaction) IsCatchUp() bool {
	return t.Kind == KindAllowance && strings.Contains(t.Description, CatchUpMarker)
}

// IsSystem reports whether t is attributed to the system pseudo-actor.
func (t *Transaction) IsSystem() bool {
	return t.ChildID == uuid.Nil
}

// Validate ensures the transaction adheres to domain rules
func (t *Transaction) Validate() error {
	if t.ID == uuid.Nil {
		return errors.New("transaction ID cannot be empty")
	}
	if !t.Kind.Valid() {
		return errors.New("unknown transaction kind: " + string(t.Kind))
	}
	if !t.Bucket.Valid() && t.Bucket != BucketAll {
		return errors.New("unknown transaction bucket: " + string(t.Bucket))
	}
	if t.Amount.IsNegative() {
		return errors.New("transaction amount must be non-negative (absolute value)")
	}
	if t.Timestamp.IsZero() {
		return errors.New("transaction timestamp cannot be empty")
	}
	return nil
}
