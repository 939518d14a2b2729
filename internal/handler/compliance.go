package handler

import (
	"net/http"
	"time"
)

// getCompliance reports rolling-window usage as of a reference date. The
// ?date= query parameter is optional and defaults to today.
func (s *Server) getCompliance(w http.ResponseWriter, r *http.Request) {
	ref := s.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondBadRequest(w, "date must be formatted as YYYY-MM-DD")
			return
		}
		ref = parsed
	}

	info, err := s.compliance.AsOf(r.Context(), ref)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toComplianceResponse(info))
}
