// Package overlap enforces the one-place-at-a-time rule: no two trips may
// claim the same calendar day. All functions are pure queries over a trip
// slice; conflicts are reported as values, never as errors, because a
// collision is an expected outcome the UI branches on.
package overlap

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/timewindow"
)

// RangeConflicts reports whether the candidate range [start, end] shares a
// calendar day with any trip other than excludeID (pass uuid.Nil when not
// editing an existing trip).
//
// The check is the raw interval condition candStart <= trip.End &&
// candEnd >= trip.Start, so an inverted candidate that still brackets a
// trip's days is reported as a conflict. Zero-value candidate dates return
// false: a conflict cannot be asserted about a non-range, and the caller's
// own validation rejects such input on other grounds.
func RangeConflicts(start, end time.Time, trips []domain.Trip, excludeID uuid.UUID) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	start, end = timewindow.Normalize(start), timewindow.Normalize(end)
	for _, t := range trips {
		if t.ID == excludeID && excludeID != uuid.Nil {
			continue
		}
		if !t.HasValidDates() {
			continue
		}
		if !start.After(timewindow.Normalize(t.EndDate)) && !end.Before(timewindow.Normalize(t.StartDate)) {
			return true
		}
	}
	return false
}

// ConflictingTrips returns every trip that claims at least one day of the
// candidate range, preserving the order trips were supplied in so conflict
// messages are stable.
func ConflictingTrips(start, end time.Time, trips []domain.Trip) []domain.Trip {
	conflicts := []domain.Trip{}
	if start.IsZero() || end.IsZero() {
		return conflicts
	}
	start, end = timewindow.Normalize(start), timewindow.Normalize(end)
	for _, t := range trips {
		if !t.HasValidDates() {
			continue
		}
		if !start.After(timewindow.Normalize(t.EndDate)) && !end.Before(timewindow.Normalize(t.StartDate)) {
			conflicts = append(conflicts, t)
		}
	}
	return conflicts
}

// OccupiedDates materializes every calendar day covered by any trip, sorted
// ascending with duplicates removed. The UI uses this to grey out a date
// picker, so days claimed by two trips must appear exactly once.
func OccupiedDates(trips []domain.Trip) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, t := range trips {
		if !t.HasValidDates() {
			continue
		}
		for d := timewindow.Normalize(t.StartDate); !d.After(timewindow.Normalize(t.EndDate)); d = d.AddDate(0, 0, 1) {
			seen[d] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// IsDateOccupied reports whether the given calendar day is claimed by any trip.
func IsDateOccupied(date time.Time, trips []domain.Trip) bool {
	_, ok := TripForDate(date, trips)
	return ok
}

// TripForDate returns the first trip (in supplied order) covering the given
// calendar day. Used for tooltips on occupied picker dates.
func TripForDate(date time.Time, trips []domain.Trip) (domain.Trip, bool) {
	d := timewindow.Normalize(date)
	for _, t := range trips {
		if !t.HasValidDates() {
			continue
		}
		if !d.Before(timewindow.Normalize(t.StartDate)) && !d.After(timewindow.Normalize(t.EndDate)) {
			return t, true
		}
	}
	return domain.Trip{}, false
}
