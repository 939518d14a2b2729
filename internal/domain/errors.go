package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing country list, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrDateConflict is returned by service functions when a trip's dates claim
// a calendar day already occupied by another trip.
// Handlers should map this to HTTP 409 Conflict, attaching the
// ValidationResult that describes the colliding trips.
var ErrDateConflict = errors.New("date conflict")

// ConflictError wraps ErrDateConflict with the ValidationResult describing
// the colliding trips, so handlers can put the full conflict list on the
// wire instead of just a message.
type ConflictError struct {
	Result ValidationResult
}

func (e *ConflictError) Error() string {
	return "date conflict: " + e.Result.Message
}

func (e *ConflictError) Unwrap() error { return ErrDateConflict }
