package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/calendar"
	"github.com/simaogato/savespendshare-backend/internal/domain"
	"github.com/simaogato/savespendshare-backend/internal/usecase/history"
	"github.com/simaogato/savespendshare-backend/internal/usecase/reconcile"
)

// StateReader is the read side of the ledger the dashboard needs
type StateReader interface {
	Snapshot() *domain.AppState
	NextAllowanceDate() time.Time
	CanUndoLastAllowance() bool
}

// GoalProgress describes how far a child is toward their goal
type GoalProgress struct {
	Name      string
	Target    decimal.Decimal
	Saved     decimal.Decimal
	Remaining decimal.Decimal
	Percent   int
}

// ChildSummary is one child's card on the dashboard
type ChildSummary struct {
	ID              uuid.UUID
	Name            string
	Age             int
	WeeklyAllowance int
	Balances        domain.Balances
	Total           decimal.Decimal
	Goal            *GoalProgress
}

// Summary represents the household overview
type Summary struct {
	Kids          []ChildSummary
	Total         decimal.Decimal
	NextAllowance time.Time
	LastAllowance *time.Time
	RotationWeek  domain.RotationWeek
	MissedWeeks   int
	UndoAvailable bool
	Recent        []domain.Transaction
}

// DashboardService handles dashboard-related operations
type DashboardService struct {
	Ledger StateReader
	Now    func() time.Time
	// Recent is how many log entries the summary carries
	Recent int
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(ledger StateReader) *DashboardService {
	return &DashboardService{
		Ledger: ledger,
		Now:    time.Now,
		Recent: 5,
	}
}

// GetSummary calculates the household overview
// Logic:
//   - Age and weekly allowance are derived from each birthday as of now
//   - Goal progress is the Save balance against the target, capped at 100%
//   - Total: sum of every child's three buckets
func (s *DashboardService) GetSummary() *Summary {
	state := s.Ledger.Snapshot()
	now := s.Now()

	summary := &Summary{
		Kids:          make([]ChildSummary, 0, len(state.Kids)),
		Total:         decimal.Zero,
		NextAllowance: s.Ledger.NextAllowanceDate(),
		LastAllowance: state.Settings.LastAllowanceAt,
		RotationWeek:  state.Settings.RotationWeek,
		UndoAvailable: s.Ledger.CanUndoLastAllowance(),
	}

	for i := range state.Kids {
		child := &state.Kids[i]
		total := child.Balances.Total()
		card := ChildSummary{
			ID:              child.ID,
			Name:            child.Name,
			Age:             calendar.Age(child.Birthday, now),
			WeeklyAllowance: reconcile.AllowanceAmount(child, now),
			Balances:        child.Balances,
			Total:           total,
		}
		if child.Goal != nil {
			card.Goal = goalProgress(child.Goal, child.Balances.Save)
		}
		summary.Kids = append(summary.Kids, card)
		summary.Total = summary.Total.Add(total)
	}

	if report := reconcile.DetectMissedPeriods(state, now); report != nil {
		summary.MissedWeeks = report.Count
	}

	summary.Recent = history.Recent(state.Transactions, s.Recent)
	return summary
}

func goalProgress(goal *domain.Goal, saved decimal.Decimal) *GoalProgress {
	progress := &GoalProgress{
		Name:      goal.Name,
		Target:    goal.Target,
		Saved:     saved,
		Remaining: decimal.Max(goal.Target.Sub(saved), decimal.Zero),
		Percent:   100,
	}
	if saved.LessThan(goal.Target) {
		progress.Percent = int(saved.Mul(decimal.NewFromInt(100)).Div(goal.Target).IntPart())
	}
	return progress
}
