package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"

	"github.com/mkarlsen/schengen-planner/internal/domain"
)

func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	trip, err := s.trips.Create(r.Context(), domain.Trip{
		StartDate: req.StartDate.Time,
		EndDate:   req.EndDate.Time,
		Countries: req.Countries,
		Purpose:   req.Purpose,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTripResponse(trip))
}

func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTripResponses(trips))
}

func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTripResponse(trip))
}

func (s *Server) updateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	trip, err := s.trips.Update(r.Context(), domain.Trip{
		ID:        id,
		StartDate: req.StartDate.Time,
		EndDate:   req.EndDate.Time,
		Countries: req.Countries,
		Purpose:   req.Purpose,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTripResponse(trip))
}

func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkTripDates validates a proposed date range against the existing calendar
// without persisting anything. An exclude_trip_id lets the client validate an
// edit of an existing trip against everything except itself.
func (s *Server) checkTripDates(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	var excludeID uuid.UUID
	if req.ExcludeTripID != nil {
		excludeID = *req.ExcludeTripID
	}
	result, err := s.trips.CheckRange(r.Context(), req.StartDate.Time, req.EndDate.Time, excludeID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, checkResponse{
		Valid:     result.Valid,
		Conflicts: toTripResponses(result.Conflicts),
		Message:   result.Message,
	})
}

func (s *Server) getOccupiedDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.trips.OccupiedDates(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]types.Date, 0, len(dates))
	for _, d := range dates {
		out = append(out, toDate(d))
	}
	respondJSON(w, http.StatusOK, occupiedResponse{Dates: out})
}

// parseID reads the {id} URL parameter. A malformed UUID is a 404 rather than
// a 400: the path simply does not name an existing resource.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, domain.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
