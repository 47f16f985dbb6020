package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/domain"
	"github.com/simaogato/savespendshare-backend/internal/usecase/allocator"
)

// UndoResult describes a reverted allowance.
type UndoResult struct {
	Result
	Reversed []domain.Transaction
	Total    decimal.Decimal
}

// CanUndoLastAllowance reports whether the newest log entries are exactly one
// complete weekly payout.
func (l *Ledger) CanUndoLastAllowance() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := reverseLastPayout(l.state)
	return err == nil
}

// reverseLastPayout returns each child's balances with the newest payout
// taken back out, keyed by child. State is not modified.
func reverseLastPayout(state *domain.AppState) (map[uuid.UUID]domain.Balances, error) {
	n, err := undoableCount(state)
	if err != nil {
		return nil, err
	}

	previous := state.Settings.RotationWeek.Prev()
	updated := make(map[uuid.UUID]domain.Balances, n)
	for _, tx := range state.Transactions[:n] {
		child := state.Child(tx.ChildID)
		balances := child.Balances
		allocator.Distribute(int(tx.Amount.IntPart()), previous).ApplyTo(&balances, -1)
		if err := balances.Validate(); err != nil {
			return nil, &domain.UndoNotEligibleError{Reason: fmt.Sprintf("undo would overdraw %s: %v", child.Name, err)}
		}
		updated[child.ID] = balances
	}
	return updated, nil
}

// undoableCount checks that the newest len(kids) entries are the regular
// allowances of a single payout, one per child. Partial payouts, catch-up
// allowances or anything written since make the log not eligible.
func undoableCount(state *domain.AppState) (int, error) {
	want := len(state.Kids)
	if want == 0 {
		return 0, &domain.UndoNotEligibleError{Reason: "no children set up"}
	}
	notEligible := &domain.UndoNotEligibleError{Reason: "no recent allowance found or other transactions have occurred since"}
	if len(state.Transactions) < want {
		return 0, notEligible
	}

	newest := &state.Transactions[0]
	paid := make(map[uuid.UUID]bool, want)
	for i := range state.Transactions[:want] {
		tx := &state.Transactions[i]
		if tx.Kind != domain.KindAllowance || tx.IsCatchUp() {
			return 0, notEligible
		}
		if !samePayout(newest, tx) || paid[tx.ChildID] || state.Child(tx.ChildID) == nil {
			return 0, &domain.UndoNotEligibleError{Reason: "the last allowance was not paid to every child at once"}
		}
		paid[tx.ChildID] = true
	}
	return want, nil
}

// samePayout matches batch IDs; entries written before batches existed fall
// back to sharing a timestamp.
func samePayout(a, b *domain.Transaction) bool {
	if a.BatchID != uuid.Nil || b.BatchID != uuid.Nil {
		return a.BatchID == b.BatchID
	}
	return a.Timestamp.Equal(b.Timestamp)
}

// UndoLastAllowance reverts the most recent weekly allowance.
// Logic:
//  1. The newest len(kids) transactions must be the regular allowances of
//     one payout, one per child
//  2. Each is re-split with the rotation that was active when it was paid
//     (current rotation - 1) and subtracted from its child's balances
//  3. Those transactions are removed, rotation steps back, and the last
//     distribution time becomes that of the next remaining allowance, if any
//  4. One undo_allowance transaction from the system actor summarizes it
func (l *Ledger) UndoLastAllowance(ctx context.Context) (*UndoResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	updated, err := reverseLastPayout(l.state)
	if err != nil {
		return nil, err
	}

	n := len(updated)
	reversed := make([]domain.Transaction, n)
	copy(reversed, l.state.Transactions[:n])
	remaining := l.state.Transactions[n:]
	previous := l.state.Settings.RotationWeek.Prev()

	for id, balances := range updated {
		l.state.Child(id).Balances = balances
	}

	l.state.Settings.RotationWeek = previous
	l.state.Settings.LastAllowanceAt = nil
	for i := range remaining {
		if remaining[i].Kind == domain.KindAllowance {
			ts := remaining[i].Timestamp
			l.state.Settings.LastAllowanceAt = &ts
			break
		}
	}

	total := decimal.Zero
	names := make([]string, 0, n)
	for _, tx := range reversed {
		total = total.Add(tx.Amount)
		names = append(names, tx.ChildName)
	}

	now := l.now()
	summary := domain.Transaction{
		ID:        uuid.New(),
		Timestamp: now,
		ChildID:   uuid.Nil,
		ChildName: domain.SystemActorName,
		Bucket:    domain.BucketAll,
		Amount:    total,
		Description: fmt.Sprintf("Undid weekly allowance from %s - %s: -$%s total",
			reversed[0].Timestamp.Format("1/2/2006"), strings.Join(names, ", "), total.StringFixed(2)),
		Kind: domain.KindUndoAllowance,
	}

	log := make([]domain.Transaction, 0, len(remaining)+1)
	log = append(log, summary)
	l.state.Transactions = append(log, remaining...)

	l.logger.Info().
		Int("reversed", n).
		Str("total", total.StringFixed(2)).
		Int("rotation_week", int(previous)).
		Msg("allowance undone")

	res := l.commit(ctx, &Result{Event: EventAllowanceUndone, Transactions: []domain.Transaction{summary}})
	return &UndoResult{Result: *res, Reversed: reversed, Total: total}, nil
}
