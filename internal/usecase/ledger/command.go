package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/domain"
)

// Command is a typed request handled by Apply. The set is closed.
type Command interface {
	command()
}

type (
	// ApplyAllowanceCmd pays the weekly allowance; empty ChildIDs means every child.
	ApplyAllowanceCmd struct {
		ChildIDs []uuid.UUID
	}

	AddFundsCmd struct {
		ChildID     uuid.UUID
		Bucket      domain.Bucket
		Amount      decimal.Decimal
		Description string
	}

	RecordSpendingCmd struct {
		ChildID     uuid.UUID
		Bucket      domain.Bucket
		Amount      decimal.Decimal
		Description string
	}

	SetGoalCmd struct {
		ChildID uuid.UUID
		Name    string
		Target  decimal.Decimal
	}

	RemoveGoalCmd struct {
		ChildID uuid.UUID
	}

	UndoAllowanceCmd struct{}

	// ApplyMissedPeriodsCmd catches up Weeks[childID] weeks per child; nil
	// Weeks catches everyone up on every missed week.
	ApplyMissedPeriodsCmd struct {
		Weeks map[uuid.UUID]int
	}

	UpdateProfileCmd struct {
		ChildID  uuid.UUID
		Name     string
		Birthday domain.Date
	}

	SetAllowanceDayCmd struct {
		Day time.Weekday
	}
)

func (ApplyAllowanceCmd) command()     {}
func (AddFundsCmd) command()           {}
func (RecordSpendingCmd) command()     {}
func (SetGoalCmd) command()            {}
func (RemoveGoalCmd) command()         {}
func (UndoAllowanceCmd) command()      {}
func (ApplyMissedPeriodsCmd) command() {}
func (UpdateProfileCmd) command()      {}
func (SetAllowanceDayCmd) command()    {}

// Apply dispatches a command to the matching operation.
func (l *Ledger) Apply(ctx context.Context, cmd Command) (*Result, error) {
	switch c := cmd.(type) {
	case ApplyAllowanceCmd:
		return l.ApplyAllowance(ctx, c.ChildIDs...)
	case AddFundsCmd:
		return l.AddFunds(ctx, c.ChildID, c.Bucket, c.Amount, c.Description)
	case RecordSpendingCmd:
		return l.RecordSpending(ctx, c.ChildID, c.Bucket, c.Amount, c.Description)
	case SetGoalCmd:
		return l.SetGoal(ctx, c.ChildID, c.Name, c.Target)
	case RemoveGoalCmd:
		return l.RemoveGoal(ctx, c.ChildID)
	case UndoAllowanceCmd:
		undo, err := l.UndoLastAllowance(ctx)
		if err != nil {
			return nil, err
		}
		return &undo.Result, nil
	case ApplyMissedPeriodsCmd:
		if c.Weeks == nil {
			return l.ApplyAllMissedPeriods(ctx)
		}
		return l.ApplyMissedPeriods(ctx, c.Weeks)
	case UpdateProfileCmd:
		return l.UpdateProfile(ctx, c.ChildID, c.Name, c.Birthday)
	case SetAllowanceDayCmd:
		return l.SetAllowanceDay(ctx, c.Day)
	default:
		return nil, fmt.Errorf("unknown command %T", cmd)
	}
}
