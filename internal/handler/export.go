// Package handler — export.go implements GET /trips/export.
// Returns the full trip list as a flat table, with per-trip rolling-window
// usage. Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/mkarlsen/schengen-planner/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "start_date", "end_date", "duration_days",
	"countries", "purpose", "notes", "optimized", "window_days_used",
}

type exportRowResponse struct {
	TripID         string   `json:"trip_id"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	DurationDays   int      `json:"duration_days"`
	Countries      []string `json:"countries"`
	Purpose        string   `json:"purpose,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Optimized      bool     `json:"optimized"`
	WindowDaysUsed int      `json:"window_days_used"`
}

// exportTrips handles GET /trips/export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) exportTrips(w http.ResponseWriter, r *http.Request) {
	rows, err := s.export.Export(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}

	out := make([]exportRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, exportRowResponse{
			TripID:         row.TripID,
			StartDate:      row.StartDate,
			EndDate:        row.EndDate,
			DurationDays:   row.DurationDays,
			Countries:      row.Countries,
			Purpose:        row.Purpose,
			Notes:          row.Notes,
			Optimized:      row.Optimized,
			WindowDaysUsed: row.WindowDaysUsed,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// writeCSV encodes rows as CSV. Countries within a row are pipe-separated to
// keep each trip on a single CSV line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck — bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write([]string{
			r.TripID,
			r.StartDate,
			r.EndDate,
			strconv.Itoa(r.DurationDays),
			strings.Join(r.Countries, "|"),
			r.Purpose,
			r.Notes,
			strconv.FormatBool(r.Optimized),
			strconv.Itoa(r.WindowDaysUsed),
		})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
