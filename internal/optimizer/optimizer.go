// Package optimizer searches for a better placement of a traveller's future
// trips: same durations, same countries, fewer wasted window days, never a
// compliance violation. The search is a bounded heuristic — fixed step size
// over a fixed horizon — not a solver, and every change it makes is explained.
package optimizer

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsen/schengen-planner/internal/compliance"
	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/overlap"
	"github.com/mkarlsen/schengen-planner/internal/timewindow"
)

// Defaults for the search bounds.
const (
	DefaultBufferDays  = 2
	DefaultHorizonDays = 365
	DefaultStepDays    = 7

	// maxRepairDelayDays bounds how far a non-compliant trip may be pushed
	// forward, one day at a time, before it is dropped from the plan.
	maxRepairDelayDays = 90
)

// Config carries the optimizer tunables. Zero values fall back to defaults,
// so Config{} is a valid configuration.
type Config struct {
	// BufferDays is the minimum number of free calendar days enforced
	// between the end of one future trip and the start of the next.
	BufferDays int
	// HorizonDays bounds how far ahead of today the placement search looks.
	HorizonDays int
	// StepDays is the candidate-start increment for the placement search.
	StepDays int
	// Now supplies "today" and exists so tests can pin the clock.
	Now func() time.Time
}

// Optimizer runs the placement search. It is stateless across runs and safe
// for concurrent use.
type Optimizer struct {
	calc        *compliance.Calculator
	bufferDays  int
	horizonDays int
	stepDays    int
	now         func() time.Time
}

// New constructs an Optimizer using the given calculator for compliance
// probes and cfg for search bounds.
func New(calc *compliance.Calculator, cfg Config) *Optimizer {
	o := &Optimizer{
		calc:        calc,
		bufferDays:  cfg.BufferDays,
		horizonDays: cfg.HorizonDays,
		stepDays:    cfg.StepDays,
		now:         cfg.Now,
	}
	if o.bufferDays <= 0 {
		o.bufferDays = DefaultBufferDays
	}
	if o.horizonDays <= 0 {
		o.horizonDays = DefaultHorizonDays
	}
	if o.stepDays <= 0 {
		o.stepDays = DefaultStepDays
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Optimize proposes a new placement for the future trips in trips.
//
// Stages, in order: split past from future, search a better start date per
// future trip, enforce inter-trip spacing, prioritize by ascending duration,
// repair any remaining violation by shortening then delaying (dropping the
// trip, with a surfaced explanation, as the last resort), and explain every
// change. Past trips are never touched. Nothing is persisted — the caller
// decides whether to apply the proposal.
func (o *Optimizer) Optimize(trips []domain.Trip) domain.OptimizationResult {
	today := timewindow.Normalize(o.now())

	past, future := o.split(trips, today)
	original := cloneTrips(future)

	working := cloneTrips(future)
	working = o.place(working, past, today)
	working = o.space(working, today)
	working = o.sequence(working)
	accepted, dropped := o.repair(working, past)

	changes := o.explain(original, accepted, dropped)

	optimized := append(cloneTrips(past), markChanged(original, accepted)...)
	sort.Slice(optimized, func(i, j int) bool {
		return optimized[i].StartDate.Before(optimized[j].StartDate)
	})

	before, after := o.beforeAfter(trips, optimized)

	return domain.OptimizationResult{
		OriginalTrips:  cloneTrips(trips),
		OptimizedTrips: optimized,
		TotalDaysSaved: after.DaysRemaining - before.DaysRemaining,
		Changes:        changes,
		Before:         before,
		After:          after,
	}
}

// split partitions trips into an immutable and a mutable set. Past trips
// (ended before today) and trips with invalid dates are immutable; everything
// else — including a currently ongoing trip — may be adjusted.
func (o *Optimizer) split(trips []domain.Trip, today time.Time) (past, future []domain.Trip) {
	for _, t := range trips {
		if !t.HasValidDates() || timewindow.Normalize(t.EndDate).Before(today) {
			past = append(past, t)
			continue
		}
		future = append(future, t)
	}
	return past, future
}

// place searches, independently for each future trip, for the start date that
// leaves the most budget days available after the trip ends. Candidates step
// from today in fixed increments up to the horizon; any candidate that would
// claim a day already occupied by another trip is rejected. The trip's
// current placement competes on equal terms and wins ties, so an already
// optimal trip records no change.
//
// Ongoing trips (started on or before today) keep their placement here —
// moving their start would rewrite days already spent.
func (o *Optimizer) place(future, past []domain.Trip, today time.Time) []domain.Trip {
	placed := cloneTrips(future)

	for i := range placed {
		t := placed[i]
		if !timewindow.Normalize(t.StartDate).After(today) {
			continue
		}
		duration := t.DurationDays()

		others := make([]domain.Trip, 0, len(past)+len(placed)-1)
		others = append(others, past...)
		for j, other := range placed {
			if j != i {
				others = append(others, other)
			}
		}

		bestStart := timewindow.Normalize(t.StartDate)
		bestScore := o.score(t, bestStart, duration, others)

		for offset := 0; offset <= o.horizonDays; offset += o.stepDays {
			candStart := today.AddDate(0, 0, offset)
			candEnd := candStart.AddDate(0, 0, duration-1)
			if overlap.RangeConflicts(candStart, candEnd, others, t.ID) {
				continue
			}
			score := o.score(t, candStart, duration, others)
			if score > bestScore {
				bestScore = score
				bestStart = candStart
			}
		}

		placed[i].StartDate = bestStart
		placed[i].EndDate = bestStart.AddDate(0, 0, duration-1)
	}

	return placed
}

// score evaluates a candidate start for trip t: the remaining budget days at
// the moment the trip would end, with every other trip at its current
// placement. Higher is better.
func (o *Optimizer) score(t domain.Trip, start time.Time, duration int, others []domain.Trip) int {
	end := start.AddDate(0, 0, duration-1)
	cand := t
	cand.StartDate = start
	cand.EndDate = end

	all := make([]domain.Trip, 0, len(others)+1)
	all = append(all, others...)
	all = append(all, cand)

	return o.calc.Compute(all, end).DaysRemaining
}

// space sorts the future trips chronologically and pushes any trip that
// starts too close to its predecessor forward by the minimum amount needed,
// preserving its duration. "Too close" means fewer than bufferDays free
// calendar days between one trip's end and the next trip's start.
//
// Ongoing trips are anchored; only trips starting after today are pushed.
func (o *Optimizer) space(future []domain.Trip, today time.Time) []domain.Trip {
	spaced := cloneTrips(future)
	sort.Slice(spaced, func(i, j int) bool {
		return spaced[i].StartDate.Before(spaced[j].StartDate)
	})

	for i := 1; i < len(spaced); i++ {
		if !timewindow.Normalize(spaced[i].StartDate).After(today) {
			continue
		}
		minStart := timewindow.Normalize(spaced[i-1].EndDate).AddDate(0, 0, o.bufferDays+1)
		if timewindow.Normalize(spaced[i].StartDate).Before(minStart) {
			duration := spaced[i].DurationDays()
			spaced[i].StartDate = minStart
			spaced[i].EndDate = minStart.AddDate(0, 0, duration-1)
		}
	}

	return spaced
}

// sequence orders processing priority by ascending duration: shorter trips
// are considered first in later passes because they are easier to fit into
// residual gaps. This orders the working set, not the calendar — trips keep
// the dates the earlier stages gave them.
func (o *Optimizer) sequence(future []domain.Trip) []domain.Trip {
	ordered := cloneTrips(future)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DurationDays() < ordered[j].DurationDays()
	})
	return ordered
}

// repair walks the future trips in chronological order and verifies each one
// leaves the traveller compliant at its own end date, given the past trips
// and everything accepted so far. A violating trip is first shortened one day
// at a time (never below a single day), then — if shortening alone cannot
// restore compliance — delayed whole up to maxRepairDelayDays. A trip that
// survives neither is dropped from the plan; the drop is reported, never
// silent.
func (o *Optimizer) repair(future, past []domain.Trip) (accepted []domain.Trip, dropped []domain.Trip) {
	ordered := cloneTrips(future)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartDate.Before(ordered[j].StartDate)
	})

	accepted = []domain.Trip{}
	acceptedAll := cloneTrips(past)

	for _, t := range ordered {
		fixed, ok := o.repairOne(t, acceptedAll)
		if !ok {
			dropped = append(dropped, t)
			continue
		}
		accepted = append(accepted, fixed)
		acceptedAll = append(acceptedAll, fixed)
	}

	return accepted, dropped
}

// repairOne returns a compliant, conflict-free placement for t against the
// already-accepted trips, or ok=false when none exists within the bounds.
func (o *Optimizer) repairOne(t domain.Trip, acceptedAll []domain.Trip) (domain.Trip, bool) {
	if o.fits(t, acceptedAll) {
		return t, true
	}

	// Shorten: walk the end date back one day at a time.
	for end := t.EndDate.AddDate(0, 0, -1); !end.Before(t.StartDate); end = end.AddDate(0, 0, -1) {
		cand := t
		cand.EndDate = end
		if o.fits(cand, acceptedAll) {
			return cand, true
		}
	}

	// Delay: push the whole trip forward, duration preserved.
	duration := t.DurationDays()
	for delay := 1; delay <= maxRepairDelayDays; delay++ {
		cand := t
		cand.StartDate = t.StartDate.AddDate(0, 0, delay)
		cand.EndDate = cand.StartDate.AddDate(0, 0, duration-1)
		if o.fits(cand, acceptedAll) {
			return cand, true
		}
	}

	return domain.Trip{}, false
}

// fits reports whether t, at its current placement, neither collides with an
// accepted trip nor breaks compliance at its own end date.
func (o *Optimizer) fits(t domain.Trip, acceptedAll []domain.Trip) bool {
	if overlap.RangeConflicts(t.StartDate, t.EndDate, acceptedAll, t.ID) {
		return false
	}
	all := make([]domain.Trip, 0, len(acceptedAll)+1)
	all = append(all, acceptedAll...)
	all = append(all, t)
	return o.calc.Compute(all, t.EndDate).IsCompliant
}

// beforeAfter computes the compliance pair the result carries: each side is
// evaluated at the end of its own last trip, where the window pressure is
// highest, so the two snapshots are comparable.
func (o *Optimizer) beforeAfter(original, optimized []domain.Trip) (before, after domain.ComplianceInfo) {
	before = o.calc.Compute(original, lastEnd(original, o.now()))
	after = o.calc.Compute(optimized, lastEnd(optimized, o.now()))
	return before, after
}

func lastEnd(trips []domain.Trip, fallback time.Time) time.Time {
	end := timewindow.Normalize(fallback)
	for _, t := range trips {
		if t.HasValidDates() && timewindow.Normalize(t.EndDate).After(end) {
			end = timewindow.Normalize(t.EndDate)
		}
	}
	return end
}

// markChanged carries the optimizer bookkeeping onto trips whose dates moved:
// the Optimized flag and the original date pair. Unchanged trips pass through
// untouched.
func markChanged(original, accepted []domain.Trip) []domain.Trip {
	origByID := make(map[uuid.UUID]domain.Trip, len(original))
	for _, t := range original {
		origByID[t.ID] = t
	}

	out := make([]domain.Trip, 0, len(accepted))
	for _, t := range accepted {
		orig, ok := origByID[t.ID]
		if ok && !(timewindow.SameDay(orig.StartDate, t.StartDate) && timewindow.SameDay(orig.EndDate, t.EndDate)) {
			origStart := timewindow.Normalize(orig.StartDate)
			origEnd := timewindow.Normalize(orig.EndDate)
			t.Optimized = true
			t.OriginalStartDate = &origStart
			t.OriginalEndDate = &origEnd
		}
		out = append(out, t)
	}
	return out
}

func cloneTrips(trips []domain.Trip) []domain.Trip {
	out := make([]domain.Trip, len(trips))
	copy(out, trips)
	return out
}
