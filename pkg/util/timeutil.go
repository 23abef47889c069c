package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseClock parses a wall-clock "HH:MM" string.
func ParseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}

// ClockBefore reports whether a precedes b when both are "HH:MM" strings.
// Unparseable values compare as not-before so callers surface them as
// validation failures instead of panicking.
func ClockBefore(a, b string) bool {
	ta, errA := ParseClock(a)
	tb, errB := ParseClock(b)
	if errA != nil || errB != nil {
		return false
	}
	return ta.Before(tb)
}
