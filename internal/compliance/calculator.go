// Package compliance implements the rolling-window day accounting behind the
// Schengen 90/180 rule: at any reference date, the days spent inside the pool
// during the trailing 180-day window must not exceed 90.
package compliance

import (
	"fmt"
	"sort"
	"time"

	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/timewindow"
)

// Rule carries the two tunables of the day-budget rule. The canonical
// Schengen values are 90 days inside any trailing 180-day window.
type Rule struct {
	// Limit is the maximum number of in-pool days per window.
	Limit int
	// Window is the trailing window length in days.
	Window int
}

// DefaultRule returns the canonical Schengen 90/180 rule.
func DefaultRule() Rule {
	return Rule{Limit: 90, Window: 180}
}

// Risk thresholds on remaining days.
const (
	highRiskThreshold   = 10
	mediumRiskThreshold = 30
)

// Calculator computes compliance snapshots for a trip list. It is stateless
// and safe for concurrent use; results depend only on the inputs.
type Calculator struct {
	rule Rule
}

// NewCalculator constructs a Calculator for the given rule.
func NewCalculator(rule Rule) *Calculator {
	return &Calculator{rule: rule}
}

// Rule returns the rule this calculator was constructed with.
func (c *Calculator) Rule() Rule {
	return c.rule
}

// Compute returns the compliance snapshot as of referenceDate. The reference
// date is an explicit parameter rather than "now" so the optimizer can probe
// compliance at the end date of a candidate placement.
//
// The trailing window is [referenceDate − (Window−1), referenceDate], both
// ends inclusive. Each trip contributes only the portion of its days that
// falls inside the window; trips entirely outside contribute nothing — the
// rolling behavior that distinguishes the rule from a fixed calendar window.
//
// Calendar days claimed by two overlapping trips are counted once: in-window
// segments are merged before summing. Overlaps are rejected upstream by the
// overlap validator, so merging only matters for datasets that bypassed it.
//
// Trips with invalid dates contribute zero days and produce a warning; a
// single malformed record never corrupts the rest of the computation.
func (c *Calculator) Compute(trips []domain.Trip, referenceDate time.Time) domain.ComplianceInfo {
	ref := timewindow.Normalize(referenceDate)
	windowStart := ref.AddDate(0, 0, -(c.rule.Window - 1))

	var warnings []string
	var segments []daySpan
	for _, t := range trips {
		if !t.HasValidDates() {
			warnings = append(warnings, fmt.Sprintf("trip %s has invalid dates and was excluded from day counting", t.ID))
			continue
		}
		start, end, ok := timewindow.Overlap(t.StartDate, t.EndDate, windowStart, ref)
		if !ok {
			continue
		}
		segments = append(segments, daySpan{start: start, end: end})
	}

	daysUsed := 0
	for _, s := range mergeSpans(segments) {
		daysUsed += timewindow.DaysBetweenInclusive(s.start, s.end)
	}

	info := domain.ComplianceInfo{
		ReferenceDate: ref,
		WindowStart:   windowStart,
		WindowEnd:     ref,
		DaysUsed:      daysUsed,
		DaysRemaining: max(0, c.rule.Limit-daysUsed),
		IsCompliant:   daysUsed <= c.rule.Limit,
		OverstayDays:  max(0, daysUsed-c.rule.Limit),
	}

	// With no trips at all there is nothing to look back on; show the window
	// ahead of the reference date instead. Display only.
	if len(trips) == 0 {
		info.WindowStart = ref
		info.WindowEnd = ref.AddDate(0, 0, c.rule.Window-1)
	}

	switch {
	case info.DaysRemaining <= highRiskThreshold:
		info.RiskLevel = domain.RiskHigh
	case info.DaysRemaining <= mediumRiskThreshold:
		info.RiskLevel = domain.RiskMedium
	default:
		info.RiskLevel = domain.RiskLow
	}

	if info.OverstayDays > 0 {
		warnings = append(warnings, fmt.Sprintf("you are %d days over the %d-day limit", info.OverstayDays, c.rule.Limit))
	} else if info.RiskLevel == domain.RiskHigh {
		warnings = append(warnings, fmt.Sprintf("only %d days remaining in the current window", info.DaysRemaining))
	}
	info.Warnings = warnings

	return info
}

// daySpan is an inclusive run of in-window calendar days.
type daySpan struct {
	start, end time.Time
}

// mergeSpans collapses overlapping or day-sharing spans so each calendar day
// is represented at most once. Input spans are already normalized.
func mergeSpans(spans []daySpan) []daySpan {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if !s.start.After(last.end) {
			if s.end.After(last.end) {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
