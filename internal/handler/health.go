package handler

import (
	"net/http"

	"github.com/mkarlsen/schengen-planner/spec"
)

// getHealth handles GET /healthz.
// Readiness is a separate concern; this just confirms the process is serving.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getOpenAPI serves the embedded API specification.
func (s *Server) getOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
