// Package domain contains the core data types for the Schengen planner.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (timewindow, overlap, compliance, optimizer,
// repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents a single stay inside the Schengen day-budget pool.
// StartDate and EndDate are inclusive calendar dates; a trip that starts and
// ends on the same day occupies exactly one day.
type Trip struct {
	ID        uuid.UUID `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	// Countries is the ordered list of jurisdiction codes visited during the
	// trip. All of them draw from the same 90/180 pool, so the engine never
	// splits days between them.
	Countries []string `json:"countries"`
	Purpose   string   `json:"purpose,omitempty"`
	Notes     string   `json:"notes,omitempty"`

	// Optimized and the Original* dates are set only when an optimizer
	// proposal is applied, never by a caller creating or editing a trip.
	Optimized         bool       `json:"optimized,omitempty"`
	OriginalStartDate *time.Time `json:"original_start_date,omitempty"`
	OriginalEndDate   *time.Time `json:"original_end_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DurationDays returns the trip length in inclusive calendar days.
// Returns 0 when the trip's dates are invalid.
func (t Trip) DurationDays() int {
	if !t.HasValidDates() {
		return 0
	}
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

// HasValidDates reports whether both dates are set and in order.
// Trips failing this check contribute zero days to day counting and are
// skipped by overlap checks; a single bad record never aborts a computation.
func (t Trip) HasValidDates() bool {
	return !t.StartDate.IsZero() && !t.EndDate.IsZero() && !t.EndDate.Before(t.StartDate)
}
