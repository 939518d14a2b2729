package domain

// ExportRow is a single row in the trip export: a flat, denormalized view of
// one trip plus the rolling-window usage as of that trip's last day.
//
// Dates travel as "2006-01-02" strings so CSV and JSON encodings agree.
// Countries is ordered as stored; callers that need a joined string (e.g.
// CSV) should join with "|".
type ExportRow struct {
	TripID       string
	StartDate    string
	EndDate      string
	DurationDays int
	Countries    []string
	Purpose      string
	Notes        string
	Optimized    bool

	// WindowDaysUsed counts the days spent inside the rolling window that
	// ends on this trip's last day, this trip included. Reading the column
	// top to bottom shows how close each trip brought the traveller to the
	// limit.
	WindowDaysUsed int
}
