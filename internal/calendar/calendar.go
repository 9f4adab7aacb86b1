// Package calendar provides the date arithmetic used by the projection
// engine: day-of-month clamping, ordinal suffixes, and canonical month
// identities. All computation is fixed to UTC so that month boundaries
// never drift with the host timezone.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used everywhere a date
// is persisted or exchanged.
const DateLayout = "2006-01-02"

// KeyLayout is the canonical month key layout (YYYY-MM).
const KeyLayout = "2006-01"

// Month identifies a single calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t, evaluated in UTC.
func MonthOf(t time.Time) Month {
	u := t.UTC()
	return Month{Year: u.Year(), Month: u.Month()}
}

// ParseMonth parses a YYYY-MM month key.
func ParseMonth(key string) (Month, error) {
	t, err := time.ParseInLocation(KeyLayout, key, time.UTC)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Key returns the canonical YYYY-MM identity of the month. All grouping
// and filtering of occurrences goes through this key.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// First returns midnight UTC on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	// Day zero of the next month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Clamp maps a nominal day-of-month (1-31) onto a concrete date in the
// month, snapping to the last valid day when the month is shorter.
// Every projection of a stored anchor day goes through this.
func (m Month) Clamp(day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := m.Days(); day > last {
		day = last
	}
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the month n months after m (n may be negative).
func (m Month) AddMonths(n int) Month {
	t := m.First().AddDate(0, n, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Next returns the following month.
func (m Month) Next() Month {
	return m.AddMonths(1)
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Contains reports whether the ISO date falls inside the month, by key
// prefix rather than by parsing into a timezone-sensitive value.
func (m Month) Contains(date string) bool {
	return len(date) >= len(KeyLayout) && date[:len(KeyLayout)] == m.Key()
}

// MonthsBetween returns the signed number of whole months from a to b.
func MonthsBetween(a, b Month) int {
	return (b.Year-a.Year)*12 + int(b.Month) - int(a.Month)
}

// Enumerate returns count consecutive months starting at from.
func Enumerate(from Month, count int) []Month {
	months := make([]Month, 0, count)
	for i := 0; i < count; i++ {
		months = append(months, from.AddMonths(i))
	}
	return months
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD) in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as an ISO-8601 calendar date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// MonthKey returns the YYYY-MM key of the month containing t.
func MonthKey(t time.Time) string {
	return MonthOf(t).Key()
}

// Ordinal returns n with its English ordinal suffix, e.g. 1st, 2nd, 3rd,
// 4th. 11, 12 and 13 take "th" regardless of their trailing digit.
func Ordinal(n int) string {
	if n < 0 {
		n = -n
	}
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
		// th
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
