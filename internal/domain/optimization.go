package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeType tags what the optimizer did to a single future trip.
type ChangeType string

const (
	ChangeNone      ChangeType = "no_change"
	ChangeMoved     ChangeType = "moved"
	ChangeShortened ChangeType = "shortened"
	// ChangeDropped marks a trip the optimizer could not make compliant by
	// shortening or delaying. The trip is absent from OptimizedTrips but the
	// drop is always surfaced here, never silent.
	ChangeDropped ChangeType = "dropped"
)

// TripChange explains what happened to one future trip during optimization,
// with before/after date pairs and a human-readable rationale for the UI diff.
type TripChange struct {
	TripID    uuid.UUID  `json:"trip_id"`
	Change    ChangeType `json:"change"`
	OldStart  time.Time  `json:"old_start"`
	OldEnd    time.Time  `json:"old_end"`
	NewStart  time.Time  `json:"new_start,omitzero"`
	NewEnd    time.Time  `json:"new_end,omitzero"`
	Rationale string     `json:"rationale"`
}

// DatePlacement is one accepted optimizer proposal: new dates for one trip.
// Only the placement moves — countries, purpose, and notes are never part of
// an apply.
type DatePlacement struct {
	TripID    uuid.UUID `json:"trip_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// OptimizationResult is the full outcome of one optimizer run. Past trips
// appear unchanged in both trip lists; future trips may be moved, shortened,
// or (as a surfaced last resort) dropped.
type OptimizationResult struct {
	OriginalTrips  []Trip `json:"original_trips"`
	OptimizedTrips []Trip `json:"optimized_trips"`
	// TotalDaysSaved is the gain in remaining schedulable days between the
	// before and after compliance snapshots.
	TotalDaysSaved int            `json:"total_days_saved"`
	Changes        []TripChange   `json:"changes"`
	Before         ComplianceInfo `json:"compliance_before"`
	After          ComplianceInfo `json:"compliance_after"`
}
