package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mkarlsen/schengen-planner/internal/domain"
)

// runOptimizer computes a proposed rearrangement of future trips. Nothing is
// persisted; the client reviews the proposal and submits the placements it
// accepts via /optimize/apply.
func (s *Server) runOptimizer(w http.ResponseWriter, r *http.Request) {
	result, err := s.planner.Optimize(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOptimizationResponse(result))
}

func (s *Server) applyOptimization(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	placements := make([]domain.DatePlacement, 0, len(req.Placements))
	for _, p := range req.Placements {
		placements = append(placements, domain.DatePlacement{
			TripID:    p.TripID,
			StartDate: p.StartDate.Time,
			EndDate:   p.EndDate.Time,
		})
	}

	trips, err := s.planner.Apply(r.Context(), placements)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTripResponses(trips))
}
