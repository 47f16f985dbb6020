package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/domain"
)

// Clock returns the current instant. Tests inject a fixed one.
type Clock func() time.Time

// Event names the state change a Result describes.
type Event string

const (
	EventSetupCompleted       Event = "setup_completed"
	EventAllowanceApplied     Event = "allowance_applied"
	EventMissedPeriodsApplied Event = "missed_periods_applied"
	EventAllowanceUndone      Event = "allowance_undone"
	EventFundsAdded           Event = "funds_added"
	EventSpendingRecorded     Event = "spending_recorded"
	EventGoalSet              Event = "goal_set"
	EventGoalRemoved          Event = "goal_removed"
	EventProfileUpdated       Event = "profile_updated"
	EventAgesReconciled       Event = "ages_reconciled"
	EventAllowanceDayChanged  Event = "allowance_day_changed"
	EventStateRestored        Event = "state_restored"
)

// GoalCelebration signals that a child's Save balance reached their goal.
type GoalCelebration struct {
	ChildID   uuid.UUID
	ChildName string
	GoalName  string
	Target    decimal.Decimal
}

// Result is returned by every successful operation.
// PersistErr is non-nil when the change is only held in memory: the
// operation itself succeeded, but the caller must surface the failure.
type Result struct {
	Event        Event
	State        *domain.AppState
	Transactions []domain.Transaction
	Celebrations []GoalCelebration
	PersistErr   error
}

// LoadOutcome describes how Open obtained the initial state.
type LoadOutcome string

const (
	OutcomeLoaded   LoadOutcome = "loaded"
	OutcomeFresh    LoadOutcome = "fresh"
	OutcomeDataLost LoadOutcome = "data_lost"
)

// LoadReport tells the caller what Open found.
// DataLoss is set when the snapshot and its backup were both unusable.
type LoadReport struct {
	Outcome  LoadOutcome
	DataLoss *domain.DataLossError
	Ages     *Result
}

// Ledger owns the household state. Every operation validates its input,
// mutates balances, prepends transactions and persists before returning.
type Ledger struct {
	mu     sync.Mutex
	state  *domain.AppState
	repo   domain.StateRepository
	now    Clock
	logger zerolog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides time.Now.
func WithClock(c Clock) Option {
	return func(l *Ledger) {
		l.now = c
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger.With().Str("component", "ledger").Logger()
	}
}

// New creates a ledger over an already loaded state.
func New(state *domain.AppState, repo domain.StateRepository, opts ...Option) *Ledger {
	if state == nil {
		state = domain.NewAppState()
	}
	l := &Ledger{
		state:  state,
		repo:   repo,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open loads the persisted state and reconciles cached ages against birthdays.
// A missing snapshot starts a fresh household; an unrecoverable one starts a
// fresh household and reports the loss. Any other repository error is returned.
func Open(ctx context.Context, repo domain.StateRepository, opts ...Option) (*Ledger, *LoadReport, error) {
	report := &LoadReport{Outcome: OutcomeLoaded}

	state, err := repo.Load(ctx)
	var lossErr *domain.DataLossError
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		report.Outcome = OutcomeFresh
		state = domain.NewAppState()
	case errors.As(err, &lossErr):
		report.Outcome = OutcomeDataLost
		report.DataLoss = lossErr
		state = domain.NewAppState()
	default:
		return nil, nil, fmt.Errorf("failed to load state: %w", err)
	}

	l := New(state, repo, opts...)
	if report.DataLoss != nil {
		l.logger.Error().Err(report.DataLoss).Msg("saved data unusable, starting fresh")
	}

	ages, err := l.ReconcileAges(ctx)
	if err != nil {
		return nil, nil, err
	}
	report.Ages = ages
	return l, report, nil
}

// Snapshot returns a read-only copy of the current state.
func (l *Ledger) Snapshot() *domain.AppState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

// Restore replaces the whole household with an imported backup. The backup
// is validated first and cached ages are refreshed on the next reconcile.
func (l *Ledger) Restore(ctx context.Context, state *domain.AppState) (*Result, error) {
	if state == nil {
		return nil, domain.NewValidationError("state", "nothing to restore")
	}
	if err := state.Validate(); err != nil {
		return nil, &domain.StructuralIntegrityError{Reason: err.Error()}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = state.Clone()
	l.logger.Warn().
		Int("kids", len(state.Kids)).
		Int("transactions", len(state.Transactions)).
		Msg("state replaced from backup")
	return l.commit(ctx, &Result{Event: EventStateRestored}), nil
}

// commit persists the state and fills in the snapshot. A failed persist is
// logged and attached to the result, never returned as the operation error.
func (l *Ledger) commit(ctx context.Context, res *Result) *Result {
	if err := l.repo.Persist(ctx, l.state); err != nil {
		res.PersistErr = err
		var critical *domain.CriticalPersistenceError
		if errors.As(err, &critical) {
			l.logger.Error().Err(err).Str("event", string(res.Event)).Msg("critical: state only held in memory")
		} else {
			l.logger.Warn().Err(err).Str("event", string(res.Event)).Msg("failed to persist state")
		}
	}
	res.State = l.state.Clone()
	l.logger.Info().
		Str("event", string(res.Event)).
		Int("transactions", len(res.Transactions)).
		Int("rotation_week", int(l.state.Settings.RotationWeek)).
		Msg("ledger updated")
	return res
}

func (l *Ledger) child(id uuid.UUID) (*domain.Child, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("childId", "please select a child")
	}
	c := l.state.Child(id)
	if c == nil {
		return nil, domain.NewValidationError("childId", fmt.Sprintf("child %s not found", id))
	}
	return c, nil
}

func newTransaction(now time.Time, child *domain.Child, bucket domain.Bucket, amount decimal.Decimal, description string, kind domain.TransactionKind) domain.Transaction {
	return domain.Transaction{
		ID:          uuid.New(),
		Timestamp:   now,
		ChildID:     child.ID,
		ChildName:   child.Name,
		Bucket:      bucket,
		Amount:      amount,
		Description: description,
		Kind:        kind,
	}
}
