// Package handler implements the HTTP handlers for the Schengen planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, compliance.go, planner.go) but all share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mkarlsen/schengen-planner/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CheckRange(ctx context.Context, start, end time.Time, excludeID uuid.UUID) (domain.ValidationResult, error)
	OccupiedDates(ctx context.Context) ([]time.Time, error)
}

// ComplianceServicer defines the compliance operations the handlers depend on.
type ComplianceServicer interface {
	AsOf(ctx context.Context, referenceDate time.Time) (domain.ComplianceInfo, error)
}

// PlannerServicer defines the optimizer operations the handlers depend on.
type PlannerServicer interface {
	Optimize(ctx context.Context) (domain.OptimizationResult, error)
	Apply(ctx context.Context, placements []domain.DatePlacement) ([]domain.Trip, error)
}

// ExportServicer defines the flat-export operation the handlers depend on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server holds the dependencies shared by all API endpoints.
// Methods live in domain-specific files but all operate on this struct.
type Server struct {
	trips      TripServicer
	compliance ComplianceServicer
	planner    PlannerServicer
	export     ExportServicer
	validate   *validator.Validate
	// now supplies "today" for the compliance default; injectable for tests.
	now func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, compliance ComplianceServicer, planner PlannerServicer, export ExportServicer) *Server {
	return &Server{
		trips:      trips,
		compliance: compliance,
		planner:    planner,
		export:     export,
		validate:   validator.New(),
		now:        time.Now,
	}
}

// Routes returns the router with every API endpoint registered.
// Cross-cutting middleware is wired by the caller (main.go), not here.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", s.getOpenAPI)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.createTrip)
		r.Get("/", s.listTrips)
		r.Post("/check", s.checkTripDates)
		r.Get("/export", s.exportTrips)
		r.Get("/{id}", s.getTrip)
		r.Put("/{id}", s.updateTrip)
		r.Delete("/{id}", s.deleteTrip)
	})

	r.Get("/calendar/occupied", s.getOccupiedDates)
	r.Get("/compliance", s.getCompliance)

	r.Route("/optimize", func(r chi.Router) {
		r.Post("/", s.runOptimizer)
		r.Post("/apply", s.applyOptimization)
	})

	return r
}
