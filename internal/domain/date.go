package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for birthdays.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time of day, stored at UTC midnight.
type Date time.Time

// NewDate returns the Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day t falls on in its own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date(t), nil
}

// Time returns the date as a time.Time at UTC midnight.
func (d Date) Time() time.Time {
	return time.Time(d)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return time.Time(d).IsZero()
}

// String returns the date formatted as YYYY-MM-DD.
func (d Date) String() string {
	return time.Time(d).Format(DateLayout)
}

// MarshalJSON implements the json.Marshaler interface.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// Full RFC 3339 timestamps are accepted and truncated to their calendar day.
func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		return nil
	}

	if t, err := time.Parse(DateLayout, value); err == nil {
		*d = Date(t)
		return nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", value, err)
	}
	*d = DateOf(t)
	return nil
}
