package domain

import "time"

// RiskLevel classifies how close a traveller is to exhausting the day budget.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ComplianceInfo is an immutable snapshot of rolling-window day accounting as
// of a reference date. It is recomputed on every call and carries no identity;
// two calls with value-equal inputs produce value-equal snapshots.
type ComplianceInfo struct {
	ReferenceDate time.Time `json:"reference_date"`
	// WindowStart and WindowEnd are the trailing window boundaries the
	// computation used, inclusive on both ends.
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
	DaysUsed      int       `json:"days_used"`
	DaysRemaining int       `json:"days_remaining"`
	IsCompliant   bool      `json:"is_compliant"`
	OverstayDays  int       `json:"overstay_days"`
	RiskLevel     RiskLevel `json:"risk_level"`
	// Warnings are human-readable notes (overstay, data-quality issues).
	// They are advisory only; the numeric fields are authoritative.
	Warnings []string `json:"warnings,omitempty"`
}
