package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/savespendshare-backend/internal/usecase/ledger"
	"github.com/simaogato/savespendshare-backend/internal/usecase/reconcile"
)

// Ledger is the subset of ledger operations the scheduler triggers
type Ledger interface {
	ReconcileAges(ctx context.Context) (*ledger.Result, error)
	MissedPeriods() *reconcile.MissedPeriodsReport
	AllowanceDue() bool
	ApplyAllowance(ctx context.Context, childIDs ...uuid.UUID) (*ledger.Result, error)
}

// CheckResult reports what one check did
type CheckResult struct {
	Birthdays int
	// Missed is set when full weeks went unpaid; paying them is left to the caretaker
	Missed    *reconcile.MissedPeriodsReport
	Allowance *ledger.Result
}

// Scheduler runs the periodic housekeeping of a household
type Scheduler struct {
	ledger        Ledger
	autoAllowance bool
	logger        zerolog.Logger
}

// NewScheduler creates a new Scheduler instance
func NewScheduler(l Ledger, autoAllowance bool, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		ledger:        l,
		autoAllowance: autoAllowance,
		logger:        logger.With().Str("component", "scheduler").Logger(),
	}
}

// Check runs one round.
// Logic:
//  1. Refresh cached ages, logging birthdays
//  2. If whole weeks were missed, report them and stop: a regular payment now
//     would hide the gap
//  3. Otherwise pay the weekly allowance when it is due and enabled
func (s *Scheduler) Check(ctx context.Context) (*CheckResult, error) {
	result := &CheckResult{}

	ages, err := s.ledger.ReconcileAges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile ages: %w", err)
	}
	if ages != nil {
		result.Birthdays = len(ages.Transactions)
	}

	if report := s.ledger.MissedPeriods(); report != nil {
		result.Missed = report
		s.logger.Warn().
			Int("missed_weeks", report.Count).
			Int("weekly_total", report.PerChildWeeklyTotal).
			Time("since", report.Since).
			Msg("allowances missed, waiting for catch-up decision")
		return result, nil
	}

	if s.autoAllowance && s.ledger.AllowanceDue() {
		res, err := s.ledger.ApplyAllowance(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to apply weekly allowance: %w", err)
		}
		result.Allowance = res
		s.logger.Info().Int("kids", len(res.Transactions)).Msg("weekly allowance applied automatically")
	}

	return result, nil
}

// Run checks once immediately, then every interval until ctx is done.
// Check failures are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.runCheck(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runCheck(ctx)
		}
	}
}

func (s *Scheduler) runCheck(ctx context.Context) {
	result, err := s.Check(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled check failed")
		return
	}
	s.logger.Debug().
		Int("birthdays", result.Birthdays).
		Bool("missed", result.Missed != nil).
		Bool("allowance_applied", result.Allowance != nil).
		Msg("scheduled check complete")
}
