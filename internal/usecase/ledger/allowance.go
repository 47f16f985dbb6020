package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/calendar"
	"github.com/simaogato/savespendshare-backend/internal/domain"
	"github.com/simaogato/savespendshare-backend/internal/usecase/allocator"
	"github.com/simaogato/savespendshare-backend/internal/usecase/reconcile"
)

const weeklyAllowanceDescription = "Weekly allowance"

// AllowancePreview is the distribution the next weekly allowance would make.
type AllowancePreview struct {
	ChildID   uuid.UUID
	ChildName string
	Age       int
	Amount    int
	Split     allocator.Split
}

// ApplyAllowance pays the weekly allowance.
// Logic:
//  1. Each selected child (all when none given) gets amount = age in dollars
//  2. The amount is split with the current rotation week and added to balances
//  3. One allowance transaction per child, with the undivided amount, all
//     sharing one batch ID
//  4. Rotation advances by one and the last distribution time becomes now
//  5. Goals are checked for completion
func (l *Ledger) ApplyAllowance(ctx context.Context, childIDs ...uuid.UUID) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kids, err := l.selectKids(childIDs)
	if err != nil {
		return nil, err
	}

	now := l.now()
	rotation := l.state.Settings.RotationWeek
	batch := uuid.New()
	txs := make([]domain.Transaction, 0, len(kids))
	for _, child := range kids {
		amount := reconcile.AllowanceAmount(child, now)
		allocator.Distribute(amount, rotation).ApplyTo(&child.Balances, 1)
		tx := newTransaction(now, child, domain.BucketAll, decimal.NewFromInt(int64(amount)), weeklyAllowanceDescription, domain.KindAllowance)
		tx.BatchID = batch
		txs = append(txs, tx)

		l.logger.Debug().
			Str("child_id", child.ID.String()).
			Int("amount", amount).
			Int("rotation_week", int(rotation)).
			Msg("allowance distributed")
	}
	prependNewestFirst(l.state, txs)

	l.state.Settings.RotationWeek = rotation.Next()
	l.state.Settings.LastAllowanceAt = &now

	res := &Result{Event: EventAllowanceApplied, Transactions: txs}
	l.checkGoals(res, now, kids...)
	return l.commit(ctx, res), nil
}

// PreviewAllowance computes what ApplyAllowance would pay right now without
// changing anything.
func (l *Ledger) PreviewAllowance() []AllowancePreview {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	previews := make([]AllowancePreview, 0, len(l.state.Kids))
	for i := range l.state.Kids {
		child := &l.state.Kids[i]
		amount := reconcile.AllowanceAmount(child, now)
		previews = append(previews, AllowancePreview{
			ChildID:   child.ID,
			ChildName: child.Name,
			Age:       calendar.Age(child.Birthday, now),
			Amount:    amount,
			Split:     allocator.Distribute(amount, l.state.Settings.RotationWeek),
		})
	}
	return previews
}

// NextAllowanceDate is the next configured allowance day strictly after today.
func (l *Ledger) NextAllowanceDate() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return calendar.NextOccurrence(l.state.Settings.AllowanceDay, l.now())
}

// AllowanceDue reports whether the automatic weekly allowance should be paid:
// a distribution has happened before, at least 7 days have passed since, and
// today is the allowance day.
func (l *Ledger) AllowanceDue() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	last := l.state.Settings.LastAllowanceAt
	if last == nil {
		return false
	}
	now := l.now()
	return calendar.DaysBetween(*last, now) >= calendar.WeekLength && now.Weekday() == l.state.Settings.AllowanceDay
}

// MissedPeriods detects fully elapsed weeks without an allowance as of now.
func (l *Ledger) MissedPeriods() *reconcile.MissedPeriodsReport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return reconcile.DetectMissedPeriods(l.state, l.now())
}

// ApplyAllMissedPeriods catches every child up on every detected week.
func (l *Ledger) ApplyAllMissedPeriods(ctx context.Context) (*Result, error) {
	l.mu.Lock()
	report := reconcile.DetectMissedPeriods(l.state, l.now())
	weeks := reconcile.AllWeeks(l.state, report)
	l.mu.Unlock()

	return l.ApplyMissedPeriods(ctx, weeks)
}

// ApplyMissedPeriods pays catch-up allowances, weeks[childID] weeks per child.
// Children absent from weeks receive nothing. Rotation and the last
// distribution time are updated once, after every child is processed, and
// the timestamp is now rather than back-dated.
func (l *Ledger) ApplyMissedPeriods(ctx context.Context, weeks map[uuid.UUID]int) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	report := reconcile.DetectMissedPeriods(l.state, now)
	if report == nil {
		return nil, domain.NewValidationError("weeks", "no missed weeks to catch up on")
	}

	plan, err := reconcile.PlanCatchUp(l.state, report, weeks)
	if err != nil {
		return nil, err
	}

	txs := make([]domain.Transaction, 0, len(plan.Entries))
	touched := make([]*domain.Child, 0, len(weeks))
	for _, entry := range plan.Entries {
		child := l.state.Child(entry.ChildID)
		entry.Split.ApplyTo(&child.Balances, 1)
		txs = append(txs, newTransaction(now, child, domain.BucketAll, decimal.NewFromInt(int64(entry.Amount)), entry.Description, domain.KindAllowance))
		if len(touched) == 0 || touched[len(touched)-1] != child {
			touched = append(touched, child)
		}
	}
	prependNewestFirst(l.state, txs)

	l.state.Settings.RotationWeek = l.state.Settings.RotationWeek.Advance(plan.Advance)
	l.state.Settings.LastAllowanceAt = &now

	l.logger.Info().
		Int("missed_weeks", report.Count).
		Int("entries", len(plan.Entries)).
		Int("rotation_advance", plan.Advance).
		Msg("missed allowances applied")

	res := &Result{Event: EventMissedPeriodsApplied, Transactions: txs}
	l.checkGoals(res, now, touched...)
	return l.commit(ctx, res), nil
}

func (l *Ledger) selectKids(ids []uuid.UUID) ([]*domain.Child, error) {
	if len(l.state.Kids) == 0 {
		return nil, domain.NewValidationError("kids", "no children set up")
	}
	if len(ids) == 0 {
		kids := make([]*domain.Child, 0, len(l.state.Kids))
		for i := range l.state.Kids {
			kids = append(kids, &l.state.Kids[i])
		}
		return kids, nil
	}

	kids := make([]*domain.Child, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, domain.NewValidationError("childId", fmt.Sprintf("child %s selected twice", id))
		}
		seen[id] = true
		child, err := l.child(id)
		if err != nil {
			return nil, err
		}
		kids = append(kids, child)
	}
	return kids, nil
}

// prependNewestFirst puts txs, given in the order they happened, on top of the log.
func prependNewestFirst(state *domain.AppState, txs []domain.Transaction) {
	reversed := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		reversed[len(txs)-1-i] = tx
	}
	state.Prepend(reversed...)
}
