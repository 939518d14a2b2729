package optimizer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/timewindow"
)

// explain produces one TripChange per original future trip, comparing its
// original dates with the placement the pipeline settled on. Dropped trips
// get a dropped entry; this is the unresolved case the caller must surface.
func (o *Optimizer) explain(original, accepted, dropped []domain.Trip) []domain.TripChange {
	acceptedByID := make(map[uuid.UUID]domain.Trip, len(accepted))
	for _, t := range accepted {
		acceptedByID[t.ID] = t
	}
	droppedIDs := make(map[uuid.UUID]struct{}, len(dropped))
	for _, t := range dropped {
		droppedIDs[t.ID] = struct{}{}
	}

	changes := make([]domain.TripChange, 0, len(original))
	for _, orig := range original {
		change := domain.TripChange{
			TripID:   orig.ID,
			OldStart: timewindow.Normalize(orig.StartDate),
			OldEnd:   timewindow.Normalize(orig.EndDate),
		}

		if _, gone := droppedIDs[orig.ID]; gone {
			change.Change = domain.ChangeDropped
			change.Rationale = "no placement within the search bounds keeps this trip compliant; it was removed from the plan and needs manual review"
			changes = append(changes, change)
			continue
		}

		now, ok := acceptedByID[orig.ID]
		if !ok {
			// Should not happen: every non-dropped trip survives the pipeline.
			continue
		}
		change.NewStart = timewindow.Normalize(now.StartDate)
		change.NewEnd = timewindow.Normalize(now.EndDate)

		switch {
		case change.NewStart.Equal(change.OldStart) && change.NewEnd.Equal(change.OldEnd):
			change.Change = domain.ChangeNone
			change.Rationale = "current placement is already the best within the search horizon"
		case now.DurationDays() < orig.DurationDays():
			cut := orig.DurationDays() - now.DurationDays()
			change.Change = domain.ChangeShortened
			change.Rationale = fmt.Sprintf("shortened by %s to stay within the day limit", plural(cut, "day"))
		default:
			delta := timewindow.DaysBetweenInclusive(change.OldStart, change.NewStart) - 1
			direction := "later"
			if change.NewStart.Before(change.OldStart) {
				delta = timewindow.DaysBetweenInclusive(change.NewStart, change.OldStart) - 1
				direction = "earlier"
			}
			change.Change = domain.ChangeMoved
			change.Rationale = fmt.Sprintf("moved %s %s to leave more window days free after the trip", plural(delta, "day"), direction)
		}

		changes = append(changes, change)
	}

	return changes
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
