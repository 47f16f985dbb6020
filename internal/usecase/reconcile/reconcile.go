package reconcile

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/savespendshare-backend/internal/calendar"
	"github.com/simaogato/savespendshare-backend/internal/domain"
	"github.com/simaogato/savespendshare-backend/internal/usecase/allocator"
)

// MissedPeriodsReport describes the fully elapsed weeks since the last distribution.
type MissedPeriodsReport struct {
	Since time.Time
	AsOf  time.Time
	Weeks []calendar.Week
	Count int
	// PerChildWeeklyTotal is the sum of every child's current age, i.e. what
	// one missed week costs the household.
	PerChildWeeklyTotal int
}

// DetectMissedPeriods returns nil on first run (no distribution recorded yet)
// or when no complete week has elapsed.
func DetectMissedPeriods(state *domain.AppState, asOf time.Time) *MissedPeriodsReport {
	last := state.Settings.LastAllowanceAt
	if last == nil {
		return nil
	}

	weeks := calendar.EnumerateCompletedWeeks(*last, asOf)
	if len(weeks) == 0 {
		return nil
	}

	total := 0
	for i := range state.Kids {
		total += AllowanceAmount(&state.Kids[i], asOf)
	}

	return &MissedPeriodsReport{
		Since:               *last,
		AsOf:                asOf,
		Weeks:               weeks,
		Count:               len(weeks),
		PerChildWeeklyTotal: total,
	}
}

// AllowanceAmount is the weekly allowance in whole dollars: the child's age.
func AllowanceAmount(child *domain.Child, asOf time.Time) int {
	return max(calendar.Age(child.Birthday, asOf), 0)
}

// CatchUpEntry is one planned catch-up allowance for one child and one week.
type CatchUpEntry struct {
	ChildID     uuid.UUID
	ChildName   string
	Week        calendar.Week
	Amount      int
	Rotation    domain.RotationWeek
	Split       allocator.Split
	Description string
}

// CatchUpPlan is the full set of entries to apply plus the rotation advance.
type CatchUpPlan struct {
	// Entries are ordered per child, oldest week first.
	Entries []CatchUpEntry
	Advance int
}

// PlanCatchUp computes the catch-up distributions for the requested number of
// weeks per child. Children missing from weeks get none.
//
// Logic:
//   - Each child may take 0..report.Count weeks
//   - Iteration i of a child pays week i with the child's age as of that
//     week's last day, distributed with rotation+i
//   - The global rotation advances once, by the largest per-child count
func PlanCatchUp(state *domain.AppState, report *MissedPeriodsReport, weeks map[uuid.UUID]int) (*CatchUpPlan, error) {
	if report == nil {
		for id, n := range weeks {
			if n != 0 {
				return nil, domain.NewValidationError("weeks", fmt.Sprintf("no missed weeks to apply for child %s", id))
			}
		}
		return &CatchUpPlan{}, nil
	}

	for id, n := range weeks {
		if state.Child(id) == nil {
			return nil, domain.NewValidationError("childId", fmt.Sprintf("child %s not found", id))
		}
		if n < 0 || n > report.Count {
			return nil, domain.NewValidationError("weeks", fmt.Sprintf("weeks to apply must be between 0 and %d, got %d", report.Count, n))
		}
	}

	plan := &CatchUpPlan{}
	rotation := state.Settings.RotationWeek
	for i := range state.Kids {
		child := &state.Kids[i]
		n := weeks[child.ID]
		for week := 0; week < n; week++ {
			w := report.Weeks[week]
			amount := AllowanceAmount(child, w.End)
			r := rotation.Advance(week)
			plan.Entries = append(plan.Entries, CatchUpEntry{
				ChildID:     child.ID,
				ChildName:   child.Name,
				Week:        w,
				Amount:      amount,
				Rotation:    r,
				Split:       allocator.Distribute(amount, r),
				Description: Description(w),
			})
		}
		plan.Advance = max(plan.Advance, n)
	}
	return plan, nil
}

// AllWeeks requests every detected week for every child.
func AllWeeks(state *domain.AppState, report *MissedPeriodsReport) map[uuid.UUID]int {
	weeks := make(map[uuid.UUID]int, len(state.Kids))
	if report == nil {
		return weeks
	}
	for _, child := range state.Kids {
		weeks[child.ID] = report.Count
	}
	return weeks
}

// Description is the transaction text of a catch-up allowance. It always
// carries domain.CatchUpMarker so undo can tell it from a regular allowance.
func Description(w calendar.Week) string {
	return fmt.Sprintf("Weekly allowance for %s %s", w.Label(), domain.CatchUpMarker)
}
