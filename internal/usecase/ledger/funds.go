package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/domain"
)

const (
	defaultAdditionDescription = "Money added"
	defaultSpendingDescription = "No description"
)

// AddFunds credits one bucket of one child.
func (l *Ledger) AddFunds(ctx context.Context, childID uuid.UUID, bucket domain.Bucket, amount decimal.Decimal, description string) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	child, amount, err := l.validateMovement(childID, bucket, amount)
	if err != nil {
		return nil, err
	}

	now := l.now()
	child.Balances.Add(bucket, amount)
	tx := newTransaction(now, child, bucket, amount, orDefault(description, defaultAdditionDescription), domain.KindManualAddition)
	l.state.Prepend(tx)

	l.logger.Debug().
		Str("child_id", child.ID.String()).
		Str("bucket", string(bucket)).
		Str("amount", amount.StringFixed(2)).
		Msg("funds added")

	res := &Result{Event: EventFundsAdded, Transactions: []domain.Transaction{tx}}
	if bucket == domain.BucketSave {
		l.checkGoals(res, now, child)
	}
	return l.commit(ctx, res), nil
}

// RecordSpending debits one bucket of one child. The bucket may be drained to
// exactly zero but never below.
func (l *Ledger) RecordSpending(ctx context.Context, childID uuid.UUID, bucket domain.Bucket, amount decimal.Decimal, description string) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	child, amount, err := l.validateMovement(childID, bucket, amount)
	if err != nil {
		return nil, err
	}

	balance := child.Balances.Get(bucket)
	if amount.GreaterThan(balance) {
		return nil, &domain.InsufficientFundsError{Bucket: bucket, Balance: balance, Requested: amount}
	}

	child.Balances.Add(bucket, amount.Neg())
	tx := newTransaction(l.now(), child, bucket, amount, orDefault(description, defaultSpendingDescription), domain.KindDeduction)
	l.state.Prepend(tx)

	l.logger.Debug().
		Str("child_id", child.ID.String()).
		Str("bucket", string(bucket)).
		Str("amount", amount.StringFixed(2)).
		Msg("spending recorded")

	return l.commit(ctx, &Result{Event: EventSpendingRecorded, Transactions: []domain.Transaction{tx}}), nil
}

// validateMovement resolves the child and rounds the amount to cents.
func (l *Ledger) validateMovement(childID uuid.UUID, bucket domain.Bucket, amount decimal.Decimal) (*domain.Child, decimal.Decimal, error) {
	child, err := l.child(childID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if !bucket.Valid() {
		return nil, decimal.Zero, domain.NewValidationError("bucket", "please select a bucket")
	}
	amount = domain.RoundAmount(amount)
	if !amount.IsPositive() {
		return nil, decimal.Zero, domain.NewValidationError("amount", "please enter a valid amount")
	}
	return child, amount, nil
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
