package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mkarlsen/schengen-planner/internal/compliance"
	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/repo"
)

// ComplianceService computes rolling-window compliance snapshots over the
// persisted trips, memoizing results in a bounded cache. The cache is
// invalidated by the trip service on every mutation; this service only reads.
type ComplianceService struct {
	repo  repo.TripRepo
	calc  *compliance.Calculator
	cache *compliance.Cache
}

// NewComplianceService constructs a ComplianceService. The cache must be the
// same instance the TripService invalidates.
func NewComplianceService(r repo.TripRepo, calc *compliance.Calculator, cache *compliance.Cache) *ComplianceService {
	return &ComplianceService{repo: r, calc: calc, cache: cache}
}

// AsOf returns the compliance snapshot at the given reference date.
// Identical trip sets and reference dates hit the cache; a hit and a fresh
// computation are indistinguishable by construction.
func (s *ComplianceService) AsOf(ctx context.Context, referenceDate time.Time) (domain.ComplianceInfo, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return domain.ComplianceInfo{}, fmt.Errorf("service.ComplianceService.AsOf: %w", err)
	}

	key := compliance.Key(trips, referenceDate, s.calc.Rule())
	if info, ok := s.cache.Get(key); ok {
		return info, nil
	}

	info := s.calc.Compute(trips, referenceDate)
	s.cache.Put(key, info)
	return info, nil
}
