package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mkarlsen/schengen-planner/internal/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// conflictResponse is the 409 body: the standard error envelope plus the
// trips that claim the contested days.
type conflictResponse struct {
	Error     errorBody      `json:"error"`
	Conflicts []tripResponse `json:"conflicts,omitempty"`
}

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// respondError maps domain sentinel errors onto HTTP statuses. Anything not
// recognized is treated as an internal error and logged; the client only ever
// sees a generic message so internals do not leak.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: errorBody{
			Code:    "not_found",
			Message: unwrapMessage(err),
		}})
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: errorBody{
			Code:    "validation_failed",
			Message: unwrapMessage(err),
		}})
	case errors.Is(err, domain.ErrDateConflict):
		body := conflictResponse{Error: errorBody{
			Code:    "date_conflict",
			Message: unwrapMessage(err),
		}}
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			body.Conflicts = toTripResponses(conflict.Result.Conflicts)
		}
		respondJSON(w, http.StatusConflict, body)
	default:
		slog.Error("internal error", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{
			Code:    "internal",
			Message: "internal server error",
		}})
	}
}

// respondBadRequest reports a malformed request (unparseable body or query).
func respondBadRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
		Code:    "bad_request",
		Message: msg,
	}})
}

// unwrapMessage strips the service call-path prefixes from a wrapped error,
// leaving the human-readable part for the client. Errors are wrapped as
// "service.Trips.Create: <cause>"; the last segment is the cause.
func unwrapMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		tail := msg[i+2:]
		if tail != "" {
			return tail
		}
	}
	return msg
}
