// Package timeutil provides time helpers for recency windows and day math.
// Trending scores and new-arrival cutoffs are all computed against UTC days,
// so the helpers here are deliberately UTC-only.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// StartOfDay returns the start of the day (00:00:00) in UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in UTC.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999999999, time.UTC)
}

// DaysAgo returns the instant exactly n*24h before now.
// Recency windows are rolling, not calendar-aligned.
func DaysAgo(n int) time.Time {
	return Now().Add(-time.Duration(n) * 24 * time.Hour)
}

// WindowStart returns the instant exactly n*24h before the reference time.
func WindowStart(ref time.Time, n int) time.Time {
	return ref.Add(-time.Duration(n) * 24 * time.Hour)
}

// WithinDays reports whether t falls inside the rolling window of the
// last n days ending at the reference time.
func WithinDays(t, ref time.Time, n int) bool {
	return !t.Before(WindowStart(ref, n)) && !t.After(ref)
}

// DaysSince calculates the number of whole calendar days since the given time.
func DaysSince(t time.Time) int {
	return DaysBetween(t, Now())
}

// DaysBetween calculates the number of calendar days between two times.
func DaysBetween(t1, t2 time.Time) int {
	a1 := StartOfDay(t1)
	a2 := StartOfDay(t2)
	days := int(a2.Sub(a1).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// IsSameDay checks if two times are on the same UTC day.
func IsSameDay(t1, t2 time.Time) bool {
	u1, u2 := t1.UTC(), t2.UTC()
	return u1.Year() == u2.Year() && u1.YearDay() == u2.YearDay()
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatDateTimeSeconds includes seconds.
	FormatDateTimeSeconds = "2006-01-02 15:04:05"
)

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in UTC.
func FormatDateStr(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// ParseDate parses a date string (YYYY-MM-DD) as UTC.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, time.UTC)
}
