// Package calendar holds the date arithmetic shared by the ledger reports and
// the recurring scheduler. Calendar dates are represented as time.Time values
// at midnight UTC.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// MonthKeyLayout formats a month as "YYYY-MM".
const MonthKeyLayout = "2006-01"

// Date truncates t to midnight UTC of its calendar day in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UTCDate returns the calendar date of t's instant in UTC. Use it for clock
// readings and for values read back from the store, which drivers may decode
// into the host's location.
func UTCDate(t time.Time) time.Time {
	return Date(t.UTC())
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonth moves a date forward by one calendar month, keeping anchorDay as
// the day of month and clamping it to the last day of shorter months. Using
// the schedule's original day as anchor avoids drift: Jan 31 steps to Feb 29
// and then back to Mar 31.
func AddMonth(from time.Time, anchorDay int) time.Time {
	y, m, _ := from.Date()
	m++
	if m > time.December {
		m = time.January
		y++
	}
	day := anchorDay
	if last := DaysIn(y, m); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first instant of t's month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// YearStart returns the first instant of t's year in UTC.
func YearStart(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey formats t's month as "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthKeyLayout)
}

// TrailingMonths returns the first day of each of the n months ending with
// the month containing now, oldest first.
func TrailingMonths(now time.Time, n int) []time.Time {
	current := MonthStart(now)
	months := make([]time.Time, n)
	for i := 0; i < n; i++ {
		months[i] = current.AddDate(0, i-(n-1), 0)
	}
	return months
}
