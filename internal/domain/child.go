package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Goal is a savings target tracked against the Save bucket.
type Goal struct {
	Name   string
	Target decimal.Decimal
	// Celebrated is set once the Save balance has reached Target for this goal.
	// Replacing the goal clears it.
	Celebrated bool
}

// Validate ensures the goal has a name and a positive target
func (g *Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return NewValidationError("goal.name", "goal name cannot be empty")
	}
	if g.Target.LessThanOrEqual(decimal.Zero) {
		return NewValidationError("goal.target", "goal target must be positive")
	}
	return nil
}

// AgeUnknown marks a CachedAge that was never derived.
const AgeUnknown = -1

// Child represents a child profile and its bucket balances.
// Age is never authoritative: it is derived from Birthday. CachedAge only
// remembers the last derived value so birthdays can be noticed.
type Child struct {
	ID        uuid.UUID
	Name      string
	Birthday  Date
	Balances  Balances
	Goal      *Goal
	CachedAge int
}

// Validate ensures the child adheres to domain rules
func (c *Child) Validate() error {
	if c.ID == uuid.Nil {
		return errors.New("child ID cannot be empty")
	}
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", "child name cannot be empty")
	}
	if c.Birthday.IsZero() {
		return NewValidationError("birthday", "birthday is required")
	}
	if err := c.Balances.Validate(); err != nil {
		return err
	}
	if c.Goal != nil {
		return c.Goal.Validate()
	}
	return nil
}
