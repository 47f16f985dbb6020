// Package calendar holds the date arithmetic behind allowances: ages from
// birthdays, the next allowance day and the weekly windows missed since the
// last distribution. All functions work on calendar days in the location of
// their time arguments.
package calendar

import (
	"fmt"
	"time"

	"github.com/simaogato/savespendshare-backend/internal/domain"
)

// WeekLength is the span of one allowance period in days.
const WeekLength = 7

// Age returns the whole years elapsed between birthday and asOf.
// It compares month and day rather than dividing day counts, so leap years
// and Feb 29 birthdays behave like calendars do.
func Age(birthday domain.Date, asOf time.Time) int {
	b := birthday.Time()
	age := asOf.Year() - b.Year()
	if asOf.Month() < b.Month() || (asOf.Month() == b.Month() && asOf.Day() < b.Day()) {
		age--
	}
	return age
}

// NextOccurrence returns the next date strictly after asOf that falls on
// weekday. When asOf already is that weekday the result is a week later.
func NextOccurrence(weekday time.Weekday, asOf time.Time) time.Time {
	days := (int(weekday) - int(asOf.Weekday()) + WeekLength) % WeekLength
	if days == 0 {
		days = WeekLength
	}
	return StartOfDay(asOf).AddDate(0, 0, days)
}

// Week is one fully elapsed allowance period. Start and End are inclusive days.
type Week struct {
	Start time.Time
	End   time.Time
}

// Label renders the week the way it appears in transaction descriptions,
// e.g. "Jan 8 - Jan 14, 2024".
func (w Week) Label() string {
	return fmt.Sprintf("%s - %s, %d", w.Start.Format("Jan 2"), w.End.Format("Jan 2"), w.Start.Year())
}

// EnumerateCompletedWeeks partitions the days after since into consecutive
// 7-day windows. The first window starts one week after since; a window is
// returned only once asOf is at least 7 days past its start. Fewer than 14
// days between since and asOf therefore yields no windows.
func EnumerateCompletedWeeks(since, asOf time.Time) []Week {
	weeks := []Week{}
	end := StartOfDay(asOf.In(since.Location()))
	start := StartOfDay(since).AddDate(0, 0, WeekLength)

	for !start.After(end) {
		if DaysBetween(start, end) >= WeekLength {
			weeks = append(weeks, Week{
				Start: start,
				End:   start.AddDate(0, 0, WeekLength-1),
			})
		}
		start = start.AddDate(0, 0, WeekLength)
	}
	return weeks
}

// DaysBetween counts calendar days from a to b, ignoring time of day and
// daylight-saving shifts.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
