// Package service contains the business logic for the Schengen planner API.
// Services validate inputs, enforce business rules, and orchestrate repo and
// engine calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsen/schengen-planner/internal/compliance"
	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/overlap"
	"github.com/mkarlsen/schengen-planner/internal/repo"
	"github.com/mkarlsen/schengen-planner/internal/timewindow"
)

// TripService implements business logic for Trip operations. It enforces the
// one-place-at-a-time rule on every write and invalidates the compliance
// cache after every mutation — the cache cannot detect staleness itself.
type TripService struct {
	repo  repo.TripRepo
	cache *compliance.Cache
}

// NewTripService constructs a TripService backed by the provided TripRepo.
// The cache may be shared with the compliance service; it is cleared on
// every trip mutation.
func NewTripService(r repo.TripRepo, cache *compliance.Cache) *TripService {
	return &TripService{repo: r, cache: cache}
}

// Create validates and persists a new trip.
// Returns domain.ErrValidation for malformed input and domain.ErrDateConflict
// when the dates collide with an existing trip.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	trip = normalizeTripDates(trip)

	if err := s.ensureNoConflict(ctx, trip.StartDate, trip.EndDate, uuid.Nil); err != nil {
		return domain.Trip{}, err
	}

	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	s.cache.Invalidate()
	return result, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// List returns all trips ordered by start date ascending.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Update validates and persists changes to an existing trip. The trip being
// edited is excluded from the overlap check so it can keep (or shift within)
// its own dates.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	trip = normalizeTripDates(trip)

	if err := s.ensureNoConflict(ctx, trip.StartDate, trip.EndDate, trip.ID); err != nil {
		return domain.Trip{}, err
	}

	result, err := s.repo.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	s.cache.Invalidate()
	return result, nil
}

// Delete removes a trip by ID.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.cache.Invalidate()
	return nil
}

// CheckRange reports whether a candidate date range collides with existing
// trips, listing the colliding trips for the UI's conflict message. Pass
// excludeID = uuid.Nil when the candidate is a new trip.
// An overlap is an expected outcome, so it is returned as a value, not an error.
func (s *TripService) CheckRange(ctx context.Context, start, end time.Time, excludeID uuid.UUID) (domain.ValidationResult, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("service.TripService.CheckRange: %w", err)
	}

	if !overlap.RangeConflicts(start, end, trips, excludeID) {
		return domain.ValidationResult{Valid: true}, nil
	}

	conflicts := overlap.ConflictingTrips(start, end, withoutTrip(trips, excludeID))
	return domain.ValidationResult{
		Valid:     false,
		Conflicts: conflicts,
		Message:   conflictMessage(conflicts),
	}, nil
}

// OccupiedDates returns every calendar day claimed by any trip, sorted
// ascending, for disabling picker dates in the UI.
func (s *TripService) OccupiedDates(ctx context.Context) ([]time.Time, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.OccupiedDates: %w", err)
	}
	return overlap.OccupiedDates(trips), nil
}

// ensureNoConflict returns a wrapped domain.ErrDateConflict when the range
// collides with any trip other than excludeID.
func (s *TripService) ensureNoConflict(ctx context.Context, start, end time.Time, excludeID uuid.UUID) error {
	result, err := s.CheckRange(ctx, start, end, excludeID)
	if err != nil {
		return err
	}
	if !result.Valid {
		return &domain.ConflictError{Result: result}
	}
	return nil
}

// validateTrip enforces business rules common to both Create and Update.
//   - Countries must be non-empty; blank entries are rejected.
//   - Both dates must be set; end must not be before start.
//
// A single-day trip (start == end) is valid.
func validateTrip(trip domain.Trip) error {
	if len(trip.Countries) == 0 {
		return fmt.Errorf("%w: at least one country is required", domain.ErrValidation)
	}
	for _, c := range trip.Countries {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: country codes must not be blank", domain.ErrValidation)
		}
	}
	if trip.StartDate.IsZero() || trip.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	}
	if timewindow.Normalize(trip.EndDate).Before(timewindow.Normalize(trip.StartDate)) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	return nil
}

// normalizeTripDates strips time-of-day so the database only ever sees
// calendar days.
func normalizeTripDates(trip domain.Trip) domain.Trip {
	trip.StartDate = timewindow.Normalize(trip.StartDate)
	trip.EndDate = timewindow.Normalize(trip.EndDate)
	return trip
}

func withoutTrip(trips []domain.Trip, id uuid.UUID) []domain.Trip {
	if id == uuid.Nil {
		return trips
	}
	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// conflictMessage builds the human-readable summary attached to a conflict,
// e.g. "dates already used by trip to FR, IT".
func conflictMessage(conflicts []domain.Trip) string {
	var countries []string
	for _, t := range conflicts {
		countries = append(countries, strings.Join(t.Countries, ", "))
	}
	return "dates already used by trip to " + strings.Join(countries, " and ")
}
