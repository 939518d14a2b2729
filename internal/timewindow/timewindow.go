// Package timewindow provides the date arithmetic every other engine package
// is built on: normalization to calendar days, inclusive day counts, and
// interval intersection. All functions are pure and operate on date-only
// values — time-of-day is stripped before any comparison, so two instants on
// the same calendar day always compare equal.
package timewindow

import "time"

// Normalize truncates t to midnight UTC, discarding time-of-day and zone.
// The 90/180 rule operates on calendar days, not instants, so every date
// entering the engine passes through here before any arithmetic.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Normalize(a).Equal(Normalize(b))
}

// DaysBetweenInclusive returns the number of calendar days from a to b,
// counting both endpoints. a and b on the same day yields 1.
// Returns 0 when b is before a; callers pass ordered inputs.
func DaysBetweenInclusive(a, b time.Time) int {
	a, b = Normalize(a), Normalize(b)
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours()/24) + 1
}

// Overlap returns the intersection of the inclusive intervals [aStart, aEnd]
// and [bStart, bEnd]. ok is false when the intervals share no day; an empty
// intersection is an ordinary outcome, not an error.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) (start, end time.Time, ok bool) {
	start = maxDate(Normalize(aStart), Normalize(bStart))
	end = minDate(Normalize(aEnd), Normalize(bEnd))
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
