package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"

	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/timewindow"
)

// tripRequest is the wire shape for creating or updating a trip.
// Dates are calendar days (YYYY-MM-DD) and both endpoints are inclusive.
type tripRequest struct {
	StartDate types.Date `json:"start_date" validate:"required"`
	EndDate   types.Date `json:"end_date" validate:"required"`
	Countries []string   `json:"countries" validate:"required,min=1,dive,required"`
	Purpose   string     `json:"purpose"`
	Notes     string     `json:"notes"`
}

type tripResponse struct {
	ID                uuid.UUID   `json:"id"`
	StartDate         types.Date  `json:"start_date"`
	EndDate           types.Date  `json:"end_date"`
	DurationDays      int         `json:"duration_days"`
	Countries         []string    `json:"countries"`
	Purpose           string      `json:"purpose,omitempty"`
	Notes             string      `json:"notes,omitempty"`
	Optimized         bool        `json:"optimized"`
	OriginalStartDate *types.Date `json:"original_start_date,omitempty"`
	OriginalEndDate   *types.Date `json:"original_end_date,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type checkRequest struct {
	StartDate     types.Date `json:"start_date" validate:"required"`
	EndDate       types.Date `json:"end_date" validate:"required"`
	ExcludeTripID *uuid.UUID `json:"exclude_trip_id,omitempty"`
}

type checkResponse struct {
	Valid     bool           `json:"valid"`
	Conflicts []tripResponse `json:"conflicts"`
	Message   string         `json:"message,omitempty"`
}

type complianceResponse struct {
	ReferenceDate types.Date `json:"reference_date"`
	WindowStart   types.Date `json:"window_start"`
	WindowEnd     types.Date `json:"window_end"`
	DaysUsed      int        `json:"days_used"`
	DaysRemaining int        `json:"days_remaining"`
	IsCompliant   bool       `json:"is_compliant"`
	OverstayDays  int        `json:"overstay_days"`
	RiskLevel     string     `json:"risk_level"`
	Warnings      []string   `json:"warnings"`
}

type tripChangeResponse struct {
	TripID    uuid.UUID   `json:"trip_id"`
	Change    string      `json:"change"`
	OldStart  types.Date  `json:"old_start"`
	OldEnd    types.Date  `json:"old_end"`
	NewStart  *types.Date `json:"new_start,omitempty"`
	NewEnd    *types.Date `json:"new_end,omitempty"`
	Rationale string      `json:"rationale"`
}

type optimizationResponse struct {
	OriginalTrips  []tripResponse       `json:"original_trips"`
	OptimizedTrips []tripResponse       `json:"optimized_trips"`
	TotalDaysSaved int                  `json:"total_days_saved"`
	Changes        []tripChangeResponse `json:"changes"`
	Before         complianceResponse   `json:"before"`
	After          complianceResponse   `json:"after"`
}

type applyRequest struct {
	Placements []placementRequest `json:"placements" validate:"required,min=1,dive"`
}

type placementRequest struct {
	TripID    uuid.UUID  `json:"trip_id" validate:"required"`
	StartDate types.Date `json:"start_date" validate:"required"`
	EndDate   types.Date `json:"end_date" validate:"required"`
}

type occupiedResponse struct {
	Dates []types.Date `json:"dates"`
}

func toDate(t time.Time) types.Date {
	return types.Date{Time: timewindow.Normalize(t)}
}

func toDatePtr(t *time.Time) *types.Date {
	if t == nil {
		return nil
	}
	d := toDate(*t)
	return &d
}

func toTripResponse(t domain.Trip) tripResponse {
	return tripResponse{
		ID:                t.ID,
		StartDate:         toDate(t.StartDate),
		EndDate:           toDate(t.EndDate),
		DurationDays:      t.DurationDays(),
		Countries:         t.Countries,
		Purpose:           t.Purpose,
		Notes:             t.Notes,
		Optimized:         t.Optimized,
		OriginalStartDate: toDatePtr(t.OriginalStartDate),
		OriginalEndDate:   toDatePtr(t.OriginalEndDate),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func toTripResponses(trips []domain.Trip) []tripResponse {
	out := make([]tripResponse, 0, len(trips))
	for _, t := range trips {
		out = append(out, toTripResponse(t))
	}
	return out
}

func toComplianceResponse(c domain.ComplianceInfo) complianceResponse {
	warnings := c.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return complianceResponse{
		ReferenceDate: toDate(c.ReferenceDate),
		WindowStart:   toDate(c.WindowStart),
		WindowEnd:     toDate(c.WindowEnd),
		DaysUsed:      c.DaysUsed,
		DaysRemaining: c.DaysRemaining,
		IsCompliant:   c.IsCompliant,
		OverstayDays:  c.OverstayDays,
		RiskLevel:     string(c.RiskLevel),
		Warnings:      warnings,
	}
}

func toChangeResponse(c domain.TripChange) tripChangeResponse {
	out := tripChangeResponse{
		TripID:    c.TripID,
		Change:    string(c.Change),
		OldStart:  toDate(c.OldStart),
		OldEnd:    toDate(c.OldEnd),
		Rationale: c.Rationale,
	}
	if !c.NewStart.IsZero() {
		d := toDate(c.NewStart)
		out.NewStart = &d
	}
	if !c.NewEnd.IsZero() {
		d := toDate(c.NewEnd)
		out.NewEnd = &d
	}
	return out
}

func toOptimizationResponse(r domain.OptimizationResult) optimizationResponse {
	changes := make([]tripChangeResponse, 0, len(r.Changes))
	for _, c := range r.Changes {
		changes = append(changes, toChangeResponse(c))
	}
	return optimizationResponse{
		OriginalTrips:  toTripResponses(r.OriginalTrips),
		OptimizedTrips: toTripResponses(r.OptimizedTrips),
		TotalDaysSaved: r.TotalDaysSaved,
		Changes:        changes,
		Before:         toComplianceResponse(r.Before),
		After:          toComplianceResponse(r.After),
	}
}
