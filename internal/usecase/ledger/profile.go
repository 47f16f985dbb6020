package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/calendar"
	"github.com/simaogato/savespendshare-backend/internal/domain"
)

const startingBalanceDescription = "Starting balance"

// NewChild is one child entered during household setup.
type NewChild struct {
	Name     string
	Birthday domain.Date
	Balances domain.Balances
	Goal     *domain.Goal
}

// Setup creates the household on first run. Non-zero starting balances are
// logged as manual additions so the log accounts for every dollar.
func (l *Ledger) Setup(ctx context.Context, kids []NewChild) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.state.Kids) > 0 {
		return nil, domain.NewValidationError("kids", "household is already set up")
	}
	if len(kids) == 0 {
		return nil, domain.NewValidationError("kids", "please add at least one child")
	}

	now := l.now()
	children := make([]domain.Child, 0, len(kids))
	var txs []domain.Transaction
	for i, nc := range kids {
		child := domain.Child{
			ID:       uuid.New(),
			Name:     strings.TrimSpace(nc.Name),
			Birthday: nc.Birthday,
			Balances: domain.Balances{
				Save:  domain.RoundAmount(nc.Balances.Save),
				Spend: domain.RoundAmount(nc.Balances.Spend),
				Share: domain.RoundAmount(nc.Balances.Share),
			},
		}
		if nc.Goal != nil {
			goal := *nc.Goal
			goal.Name = strings.TrimSpace(goal.Name)
			goal.Target = domain.RoundAmount(goal.Target)
			goal.Celebrated = false
			child.Goal = &goal
		}
		if err := validateNewChild(&child, now); err != nil {
			return nil, fmt.Errorf("kids[%d]: %w", i, err)
		}
		child.CachedAge = calendar.Age(child.Birthday, now)

		for _, b := range domain.Buckets {
			if amount := child.Balances.Get(b); amount.IsPositive() {
				txs = append(txs, newTransaction(now, &child, b, amount, startingBalanceDescription, domain.KindManualAddition))
			}
		}
		children = append(children, child)
	}

	l.state.Kids = children
	prependNewestFirst(l.state, txs)

	l.logger.Info().Int("kids", len(children)).Msg("household set up")
	return l.commit(ctx, &Result{Event: EventSetupCompleted, Transactions: txs}), nil
}

func validateNewChild(child *domain.Child, now time.Time) error {
	if err := child.Validate(); err != nil {
		return err
	}
	if child.Birthday.Time().After(now) {
		return domain.NewValidationError("birthday", "birthday cannot be in the future")
	}
	return nil
}

// UpdateProfile renames a child or corrects their birthday. Changes are logged
// as one profile_update transaction; an update that changes nothing logs none.
func (l *Ledger) UpdateProfile(ctx context.Context, childID uuid.UUID, name string, birthday domain.Date) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	child, err := l.child(childID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	updated := *child
	updated.Name = strings.TrimSpace(name)
	updated.Birthday = birthday
	if err := validateNewChild(&updated, now); err != nil {
		return nil, err
	}

	var changes []string
	if updated.Name != child.Name {
		changes = append(changes, fmt.Sprintf("Name: %s → %s", child.Name, updated.Name))
	}
	if updated.Birthday != child.Birthday {
		oldAge := calendar.Age(child.Birthday, now)
		newAge := calendar.Age(updated.Birthday, now)
		change := fmt.Sprintf("Birthday: %s → %s", child.Birthday, updated.Birthday)
		if oldAge != newAge {
			change += fmt.Sprintf(" (Allowance: $%d.00 → $%d.00)", oldAge, newAge)
		}
		changes = append(changes, change)
	}
	updated.CachedAge = calendar.Age(updated.Birthday, now)
	*child = updated

	res := &Result{Event: EventProfileUpdated}
	if len(changes) > 0 {
		tx := newTransaction(now, child, domain.BucketAll, decimal.Zero, "Profile updated: "+strings.Join(changes, ", "), domain.KindProfileUpdate)
		l.state.Prepend(tx)
		res.Transactions = append(res.Transactions, tx)
	}
	return l.commit(ctx, res), nil
}

// ReconcileAges refreshes every child's cached age from their birthday.
// A child who got older since the last check gets a birthday transaction.
// Returns nil when every cache is already current.
func (l *Ledger) ReconcileAges(ctx context.Context) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	changed := false
	res := &Result{Event: EventAgesReconciled}
	for i := range l.state.Kids {
		child := &l.state.Kids[i]
		age := calendar.Age(child.Birthday, now)
		if age == child.CachedAge {
			continue
		}
		changed = true

		if age > child.CachedAge && child.CachedAge != domain.AgeUnknown {
			desc := fmt.Sprintf("Happy Birthday! Now %d years old. Weekly allowance updated to $%d.00", age, age)
			tx := newTransaction(now, child, domain.BucketAll, decimal.Zero, desc, domain.KindBirthday)
			l.state.Prepend(tx)
			res.Transactions = append(res.Transactions, tx)

			l.logger.Info().
				Str("child_id", child.ID.String()).
				Int("age", age).
				Msg("birthday")
		}
		child.CachedAge = age
	}

	if !changed {
		return nil, nil
	}
	return l.commit(ctx, res), nil
}

// SetAllowanceDay changes the weekday the automatic allowance is paid on.
func (l *Ledger) SetAllowanceDay(ctx context.Context, day time.Weekday) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if day < time.Sunday || day > time.Saturday {
		return nil, domain.NewValidationError("allowanceDay", "unknown weekday")
	}
	l.state.Settings.AllowanceDay = day

	l.logger.Debug().Str("allowance_day", day.String()).Msg("allowance day changed")
	return l.commit(ctx, &Result{Event: EventAllowanceDayChanged}), nil
}
