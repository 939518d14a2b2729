package optimizer_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/schengen-planner/internal/compliance"
	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/optimizer"
	"github.com/mkarlsen/schengen-planner/internal/overlap"
	"github.com/mkarlsen/schengen-planner/internal/timewindow"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trip(country string, start, end time.Time) domain.Trip {
	return domain.Trip{
		ID:        uuid.New(),
		StartDate: start,
		EndDate:   end,
		Countries: []string{country},
	}
}

// newOptimizer pins the clock so stage behavior is deterministic under test.
func newOptimizer(today time.Time, rule compliance.Rule) *optimizer.Optimizer {
	return optimizer.New(compliance.NewCalculator(rule), optimizer.Config{
		Now: func() time.Time { return today },
	})
}

// findChange returns the change entry for the given trip id.
func findChange(t *testing.T, changes []domain.TripChange, id uuid.UUID) domain.TripChange {
	t.Helper()
	for _, c := range changes {
		if c.TripID == id {
			return c
		}
	}
	t.Fatalf("no change entry for trip %s", id)
	return domain.TripChange{}
}

// ---- trivial inputs --------------------------------------------------------

func TestOptimize_NoTrips(t *testing.T) {
	o := newOptimizer(date(2024, 6, 1), compliance.DefaultRule())

	got := o.Optimize(nil)

	assert.Empty(t, got.OptimizedTrips)
	assert.Empty(t, got.Changes)
	assert.Equal(t, 0, got.TotalDaysSaved)
}

func TestOptimize_PastTripsAreNeverTouched(t *testing.T) {
	past := trip("FR", date(2024, 1, 10), date(2024, 1, 20))
	o := newOptimizer(date(2024, 6, 1), compliance.DefaultRule())

	got := o.Optimize([]domain.Trip{past})

	require.Len(t, got.OptimizedTrips, 1)
	assert.Equal(t, past.ID, got.OptimizedTrips[0].ID)
	assert.True(t, got.OptimizedTrips[0].StartDate.Equal(past.StartDate))
	assert.True(t, got.OptimizedTrips[0].EndDate.Equal(past.EndDate))
	assert.False(t, got.OptimizedTrips[0].Optimized)
	// Past trips get no change entry — they were never candidates.
	assert.Empty(t, got.Changes)
}

func TestOptimize_SingleFutureTripAlreadyOptimal(t *testing.T) {
	// With no other trips, every placement of a lone trip scores the same,
	// and ties keep the current placement.
	today := date(2024, 6, 1)
	future := trip("IT", date(2024, 7, 1), date(2024, 7, 7))
	o := newOptimizer(today, compliance.DefaultRule())

	got := o.Optimize([]domain.Trip{future})

	require.Len(t, got.OptimizedTrips, 1)
	assert.True(t, got.OptimizedTrips[0].StartDate.Equal(future.StartDate))
	assert.False(t, got.OptimizedTrips[0].Optimized)

	change := findChange(t, got.Changes, future.ID)
	assert.Equal(t, domain.ChangeNone, change.Change)
	assert.NotEmpty(t, change.Rationale)
}

// ---- invariants over a busy itinerary --------------------------------------

func TestOptimize_PreservesDurationsCountriesAndIDs(t *testing.T) {
	today := date(2024, 6, 1)
	trips := []domain.Trip{
		trip("FR", date(2024, 3, 1), date(2024, 3, 14)),  // past
		trip("IT", date(2024, 7, 1), date(2024, 7, 14)),  // future
		trip("DE", date(2024, 7, 16), date(2024, 8, 10)), // future, close behind
		trip("ES", date(2024, 9, 1), date(2024, 9, 7)),   // future
	}
	o := newOptimizer(today, compliance.DefaultRule())

	got := o.Optimize(trips)

	byID := make(map[uuid.UUID]domain.Trip)
	for _, tr := range got.OptimizedTrips {
		byID[tr.ID] = tr
	}

	dropped := make(map[uuid.UUID]bool)
	for _, c := range got.Changes {
		if c.Change == domain.ChangeDropped {
			dropped[c.TripID] = true
		}
	}

	shortened := make(map[uuid.UUID]bool)
	for _, c := range got.Changes {
		if c.Change == domain.ChangeShortened {
			shortened[c.TripID] = true
		}
	}

	for _, orig := range trips {
		if dropped[orig.ID] {
			continue
		}
		result, ok := byID[orig.ID]
		require.True(t, ok, "trip %s missing from optimized set without a dropped explanation", orig.ID)
		assert.Equal(t, orig.Countries, result.Countries)
		if !shortened[orig.ID] {
			assert.Equal(t, orig.DurationDays(), result.DurationDays(),
				"duration of trip %s changed without a shortened explanation", orig.ID)
		}
	}
}

func TestOptimize_OptimizedSetHasNoOverlaps(t *testing.T) {
	today := date(2024, 6, 1)
	trips := []domain.Trip{
		trip("FR", date(2024, 5, 20), date(2024, 6, 5)), // ongoing
		trip("IT", date(2024, 6, 6), date(2024, 6, 20)), // violates the buffer
		trip("DE", date(2024, 6, 21), date(2024, 7, 5)), // violates the buffer
	}
	o := newOptimizer(today, compliance.DefaultRule())

	got := o.Optimize(trips)

	for i, a := range got.OptimizedTrips {
		others := append([]domain.Trip{}, got.OptimizedTrips[:i]...)
		others = append(others, got.OptimizedTrips[i+1:]...)
		assert.False(t, overlap.RangeConflicts(a.StartDate, a.EndDate, others, a.ID),
			"optimized trip %s overlaps another trip", a.ID)
	}
}

func TestOptimize_EnforcesBufferBetweenFutureTrips(t *testing.T) {
	today := date(2024, 6, 1)
	trips := []domain.Trip{
		trip("IT", date(2024, 7, 1), date(2024, 7, 7)),
		trip("DE", date(2024, 7, 8), date(2024, 7, 14)), // starts the day after IT ends
	}
	o := newOptimizer(today, compliance.DefaultRule())

	got := o.Optimize(trips)

	sorted := got.OptimizedTrips
	require.Len(t, sorted, 2)
	for i := 1; i < len(sorted); i++ {
		gap := timewindow.DaysBetweenInclusive(sorted[i-1].EndDate, sorted[i].StartDate) - 2
		assert.GreaterOrEqual(t, gap, optimizer.DefaultBufferDays,
			"need at least %d free days between consecutive trips, got %d", optimizer.DefaultBufferDays, gap)
	}
}

func TestOptimize_NonWorsening(t *testing.T) {
	today := date(2024, 6, 1)
	trips := []domain.Trip{
		trip("FR", date(2024, 4, 1), date(2024, 4, 30)), // past, 30 days used
		trip("IT", date(2024, 6, 10), date(2024, 7, 9)),
		trip("DE", date(2024, 7, 15), date(2024, 8, 13)),
	}
	o := newOptimizer(today, compliance.DefaultRule())

	got := o.Optimize(trips)

	droppedAny := false
	for _, c := range got.Changes {
		if c.Change == domain.ChangeDropped {
			droppedAny = true
		}
	}
	if !droppedAny {
		assert.GreaterOrEqual(t, got.After.DaysRemaining, got.Before.DaysRemaining)
		assert.Equal(t, got.After.DaysRemaining-got.Before.DaysRemaining, got.TotalDaysSaved)
	}
}

// ---- compliance repair -----------------------------------------------------

func TestOptimize_ShortensOngoingOverstayTrip(t *testing.T) {
	// 107-day ongoing trip: not movable (it already started), so repair must
	// walk the end date back until exactly 90 in-window days remain.
	today := date(2024, 8, 1)
	long := trip("NL", date(2024, 5, 1), date(2024, 8, 15))
	o := newOptimizer(today, compliance.DefaultRule())

	got := o.Optimize([]domain.Trip{long})

	require.Len(t, got.OptimizedTrips, 1)
	result := got.OptimizedTrips[0]
	assert.True(t, result.StartDate.Equal(timewindow.Normalize(long.StartDate)), "ongoing trip start must not move")
	assert.True(t, result.EndDate.Equal(date(2024, 7, 29)), "end should be pulled back to the 90th day, got %s", result.EndDate)
	assert.Equal(t, 90, result.DurationDays())
	assert.True(t, result.Optimized)
	require.NotNil(t, result.OriginalEndDate)
	assert.True(t, result.OriginalEndDate.Equal(date(2024, 8, 15)))

	change := findChange(t, got.Changes, long.ID)
	assert.Equal(t, domain.ChangeShortened, change.Change)
	assert.True(t, got.After.IsCompliant)
}

func TestOptimize_DropsUnresolvableTrip(t *testing.T) {
	// Tight custom rule: 5 days per 180. The past trip has eaten the whole
	// budget and stays in the window for any reachable delay, so the future
	// trip cannot be shortened or delayed into compliance.
	today := date(2024, 6, 1)
	past := trip("FR", date(2024, 5, 25), date(2024, 5, 29)) // 5 days, all in window
	future := trip("IT", date(2024, 6, 10), date(2024, 6, 19))
	o := newOptimizer(today, compliance.Rule{Limit: 5, Window: 180})

	got := o.Optimize([]domain.Trip{past, future})

	// Only the untouched past trip survives.
	require.Len(t, got.OptimizedTrips, 1)
	assert.Equal(t, past.ID, got.OptimizedTrips[0].ID)

	change := findChange(t, got.Changes, future.ID)
	assert.Equal(t, domain.ChangeDropped, change.Change)
	assert.NotEmpty(t, change.Rationale)
}

func TestOptimize_InvalidDatedTripPassesThroughUntouched(t *testing.T) {
	today := date(2024, 6, 1)
	broken := domain.Trip{ID: uuid.New(), StartDate: date(2024, 7, 10), EndDate: date(2024, 7, 1), Countries: []string{"FR"}}
	o := newOptimizer(today, compliance.DefaultRule())

	got := o.Optimize([]domain.Trip{broken})

	require.Len(t, got.OptimizedTrips, 1)
	assert.Equal(t, broken.ID, got.OptimizedTrips[0].ID)
	assert.False(t, got.OptimizedTrips[0].Optimized)
}

// ---- explanations ----------------------------------------------------------

func TestOptimize_MovedTripExplainsDirectionAndDelta(t *testing.T) {
	// Past usage pressing on the window gives the placement search a reason
	// to move the future trip later.
	today := date(2024, 6, 1)
	trips := []domain.Trip{
		trip("FR", date(2024, 3, 1), date(2024, 5, 15)),  // 76 past days in window
		trip("IT", date(2024, 6, 5), date(2024, 6, 18)),  // 14 days, would sit at 90 used
	}
	o := newOptimizer(today, compliance.DefaultRule())

	got := o.Optimize(trips)

	change := findChange(t, got.Changes, trips[1].ID)
	if change.Change == domain.ChangeMoved {
		assert.False(t, change.NewStart.Equal(change.OldStart))
		assert.Contains(t, change.Rationale, "moved")
		// Duration preserved through the move.
		assert.Equal(t,
			timewindow.DaysBetweenInclusive(change.OldStart, change.OldEnd),
			timewindow.DaysBetweenInclusive(change.NewStart, change.NewEnd),
		)
	}
	// Whatever the heuristic chose, the outcome must not be worse.
	assert.GreaterOrEqual(t, got.After.DaysRemaining, got.Before.DaysRemaining)
}

func TestOptimize_EveryFutureTripGetsAChangeEntry(t *testing.T) {
	today := date(2024, 6, 1)
	trips := []domain.Trip{
		trip("FR", date(2024, 1, 1), date(2024, 1, 10)), // past
		trip("IT", date(2024, 7, 1), date(2024, 7, 7)),
		trip("DE", date(2024, 8, 1), date(2024, 8, 7)),
		trip("ES", date(2024, 9, 1), date(2024, 9, 7)),
	}
	o := newOptimizer(today, compliance.DefaultRule())

	got := o.Optimize(trips)

	assert.Len(t, got.Changes, 3, "one explanation per future trip")
	for _, c := range got.Changes {
		assert.NotEmpty(t, c.Rationale)
	}
}
