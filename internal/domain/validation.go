package domain

// ValidationResult reports whether a candidate date range collides with
// existing trips. An overlap is an expected business outcome the UI branches
// on, so it travels as a value rather than an error.
type ValidationResult struct {
	Valid bool `json:"valid"`
	// Conflicts lists every trip that claims at least one day of the
	// candidate range, in the order the trips were supplied.
	Conflicts []Trip `json:"conflicts,omitempty"`
	// Message is a ready-to-display summary, e.g.
	// "dates already used by trip to FR, IT".
	Message string `json:"message,omitempty"`
}
