package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/domain"
)

// SetGoal replaces the child's savings goal. A goal the Save balance already
// covers is celebrated on the next balance increase, not immediately.
func (l *Ledger) SetGoal(ctx context.Context, childID uuid.UUID, name string, target decimal.Decimal) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	child, err := l.child(childID)
	if err != nil {
		return nil, err
	}

	goal := &domain.Goal{Name: strings.TrimSpace(name), Target: domain.RoundAmount(target)}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	child.Goal = goal

	l.logger.Debug().
		Str("child_id", child.ID.String()).
		Str("goal", goal.Name).
		Str("target", goal.Target.StringFixed(2)).
		Msg("goal set")

	return l.commit(ctx, &Result{Event: EventGoalSet}), nil
}

// RemoveGoal clears the child's goal. Removing an absent goal is a no-op.
func (l *Ledger) RemoveGoal(ctx context.Context, childID uuid.UUID) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	child, err := l.child(childID)
	if err != nil {
		return nil, err
	}
	child.Goal = nil

	return l.commit(ctx, &Result{Event: EventGoalRemoved}), nil
}

// checkGoals celebrates every given child whose Save balance reached an
// uncelebrated goal. Each celebration logs a goal_completed transaction for
// the target amount; balances are not touched.
func (l *Ledger) checkGoals(res *Result, now time.Time, kids ...*domain.Child) {
	for _, child := range kids {
		goal := child.Goal
		if goal == nil || goal.Celebrated || child.Balances.Save.LessThan(goal.Target) {
			continue
		}
		goal.Celebrated = true

		tx := newTransaction(now, child, domain.BucketSave, goal.Target, "Goal completed: "+goal.Name, domain.KindGoalCompleted)
		l.state.Prepend(tx)
		res.Transactions = append(res.Transactions, tx)
		res.Celebrations = append(res.Celebrations, GoalCelebration{
			ChildID:   child.ID,
			ChildName: child.Name,
			GoalName:  goal.Name,
			Target:    goal.Target,
		})

		l.logger.Info().
			Str("child_id", child.ID.String()).
			Str("goal", goal.Name).
			Msg("goal completed")
	}
}
