package domain

import (
	"fmt"
	"strings"
	"time"
)

// RotationWeek selects which bucket receives the first indivisible remainder unit.
// It cycles 1 -> 2 -> 3 -> 1.
type RotationWeek int

const (
	RotationFirst RotationWeek = 1
	RotationLast  RotationWeek = 3
)

// Valid reports whether r is one of 1, 2 or 3.
func (r RotationWeek) Valid() bool {
	return r >= RotationFirst && r <= RotationLast
}

// Next returns the rotation after r.
func (r RotationWeek) Next() RotationWeek {
	return r.Advance(1)
}

// Prev returns the rotation before r, wrapping 1 -> 3.
func (r RotationWeek) Prev() RotationWeek {
	return r.Advance(-1)
}

// Advance moves the rotation n steps (n may be negative).
func (r RotationWeek) Advance(n int) RotationWeek {
	idx := (int(r) - 1 + n) % 3
	if idx < 0 {
		idx += 3
	}
	return RotationWeek(idx + 1)
}

// Index returns the 0-based bucket index the rotation starts at.
func (r RotationWeek) Index() int {
	return (int(r) - 1) % 3
}

// Settings holds household-wide allowance configuration.
type Settings struct {
	AllowanceDay    time.Weekday
	LastAllowanceAt *time.Time
	RotationWeek    RotationWeek
}

// DefaultSettings returns the settings of a freshly initialized household.
func DefaultSettings() Settings {
	return Settings{
		AllowanceDay: time.Sunday,
		RotationWeek: RotationFirst,
	}
}

// Validate ensures the settings adhere to domain rules
func (s *Settings) Validate() error {
	if !s.RotationWeek.Valid() {
		return NewValidationError("rotationWeek", fmt.Sprintf("rotation week must be 1, 2 or 3, got %d", s.RotationWeek))
	}
	if s.AllowanceDay < time.Sunday || s.AllowanceDay > time.Saturday {
		return NewValidationError("allowanceDay", "unknown weekday")
	}
	return nil
}

// ParseWeekday parses a lower- or mixed-case English weekday name.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return time.Sunday, NewValidationError("allowanceDay", fmt.Sprintf("unknown weekday %q", s))
}
