// Package dates holds the calendar-day arithmetic shared by the resolver, builder and rules.
// All comparisons in the engine are made on calendar days, never on timestamps.
package dates

import "time"

// Layout ISO calendar date
const Layout = "2006-01-02"

// Day truncates t to its calendar day (UTC midnight of t's own date)
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween whole days from `from` to `to` (negative when to is earlier)
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

// OnOrBefore reports whether a's day is not after b's day
func OnOrBefore(a, b time.Time) bool {
	return !Day(a).After(Day(b))
}

// Format renders t as YYYY-MM-DD
func Format(t time.Time) string {
	return t.Format(Layout)
}
