package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkarlsen/schengen-planner/internal/compliance"
	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/optimizer"
	"github.com/mkarlsen/schengen-planner/internal/overlap"
	"github.com/mkarlsen/schengen-planner/internal/repo"
	"github.com/mkarlsen/schengen-planner/internal/timewindow"
)

// PlannerService runs the trip optimizer over the persisted trips and applies
// accepted proposals. Optimize never writes; Apply writes only date fields.
type PlannerService struct {
	repo  repo.TripRepo
	opt   *optimizer.Optimizer
	cache *compliance.Cache
}

// NewPlannerService constructs a PlannerService. The cache must be the shared
// compliance cache so applied proposals invalidate stale snapshots.
func NewPlannerService(r repo.TripRepo, opt *optimizer.Optimizer, cache *compliance.Cache) *PlannerService {
	return &PlannerService{repo: r, opt: opt, cache: cache}
}

// Optimize loads all trips and returns the optimizer's proposal. Nothing is
// persisted; the caller decides whether to apply it.
func (s *PlannerService) Optimize(ctx context.Context) (domain.OptimizationResult, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return domain.OptimizationResult{}, fmt.Errorf("service.PlannerService.Optimize: %w", err)
	}
	return s.opt.Optimize(trips), nil
}

// Apply persists a set of accepted date placements. The full placement set is
// validated as a whole before any write: every referenced trip must exist,
// every placement must be a valid range, and the resulting calendar must be
// overlap-free. Original dates are recorded from the current state so the UI
// can show what moved.
func (s *PlannerService) Apply(ctx context.Context, placements []domain.DatePlacement) ([]domain.Trip, error) {
	if len(placements) == 0 {
		return []domain.Trip{}, nil
	}

	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.PlannerService.Apply: %w", err)
	}
	byID := make(map[uuid.UUID]domain.Trip, len(trips))
	for _, t := range trips {
		byID[t.ID] = t
	}

	// Build the post-apply calendar in memory first. Applying sequentially
	// against the database would reject proposals that only overlap a trip
	// that is itself about to move.
	proposed := make(map[uuid.UUID]domain.DatePlacement, len(placements))
	for _, p := range placements {
		if _, ok := byID[p.TripID]; !ok {
			return nil, fmt.Errorf("service.PlannerService.Apply: trip %s: %w", p.TripID, domain.ErrNotFound)
		}
		start, end := timewindow.Normalize(p.StartDate), timewindow.Normalize(p.EndDate)
		if p.StartDate.IsZero() || p.EndDate.IsZero() || end.Before(start) {
			return nil, fmt.Errorf("%w: invalid date range for trip %s", domain.ErrValidation, p.TripID)
		}
		proposed[p.TripID] = domain.DatePlacement{TripID: p.TripID, StartDate: start, EndDate: end}
	}

	final := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if p, ok := proposed[t.ID]; ok {
			t.StartDate = p.StartDate
			t.EndDate = p.EndDate
		}
		final = append(final, t)
	}
	for i, t := range final {
		others := make([]domain.Trip, 0, len(final)-1)
		others = append(others, final[:i]...)
		others = append(others, final[i+1:]...)
		if overlap.RangeConflicts(t.StartDate, t.EndDate, others, t.ID) {
			return nil, fmt.Errorf("%w: applying these placements would leave trip %s overlapping another trip", domain.ErrDateConflict, t.ID)
		}
	}

	updated := make([]domain.Trip, 0, len(placements))
	for _, p := range placements {
		current := byID[p.TripID]
		placement := proposed[p.TripID]

		// Keep the earliest known original dates if this trip was already
		// moved by a previous optimization.
		origStart, origEnd := current.StartDate, current.EndDate
		if current.OriginalStartDate != nil {
			origStart = *current.OriginalStartDate
		}
		if current.OriginalEndDate != nil {
			origEnd = *current.OriginalEndDate
		}

		t, err := s.repo.UpdateDates(ctx, p.TripID, placement.StartDate, placement.EndDate, &origStart, &origEnd)
		if err != nil {
			return nil, fmt.Errorf("service.PlannerService.Apply: %w", err)
		}
		updated = append(updated, t)
	}

	s.cache.Invalidate()
	return updated, nil
}
