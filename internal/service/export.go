package service

import (
	"context"
	"fmt"

	"github.com/mkarlsen/schengen-planner/internal/compliance"
	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/repo"
)

// ExportService assembles a flat export of all trips with per-trip
// rolling-window usage.
type ExportService struct {
	trips repo.TripRepo
	calc  *compliance.Calculator
}

// NewExportService constructs an ExportService backed by the provided repo
// and calculator.
func NewExportService(trips repo.TripRepo, calc *compliance.Calculator) *ExportService {
	return &ExportService{trips: trips, calc: calc}
}

// Export returns one ExportRow per trip, ordered by start date. Each row
// carries the window usage as of that trip's last day, so the export doubles
// as a historical compliance trace.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Export.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(trips))
	for _, t := range trips {
		row := domain.ExportRow{
			TripID:       t.ID.String(),
			StartDate:    t.StartDate.Format("2006-01-02"),
			EndDate:      t.EndDate.Format("2006-01-02"),
			DurationDays: t.DurationDays(),
			Countries:    t.Countries,
			Purpose:      t.Purpose,
			Notes:        t.Notes,
			Optimized:    t.Optimized,
		}
		if t.HasValidDates() {
			row.WindowDaysUsed = s.calc.Compute(trips, t.EndDate).DaysUsed
		}
		rows = append(rows, row)
	}
	return rows, nil
}
