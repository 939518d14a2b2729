package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/schengen-planner/internal/domain"
	"github.com/mkarlsen/schengen-planner/internal/handler"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create        func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list          func(ctx context.Context) ([]domain.Trip, error)
	update        func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete        func(ctx context.Context, id uuid.UUID) error
	checkRange    func(ctx context.Context, start, end time.Time, excludeID uuid.UUID) (domain.ValidationResult, error)
	occupiedDates func(ctx context.Context) ([]time.Time, error)
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) List(ctx context.Context) ([]domain.Trip, error) {
	return m.list(ctx)
}
func (m *mockTripServicer) Update(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.update(ctx, t)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTripServicer) CheckRange(ctx context.Context, start, end time.Time, excludeID uuid.UUID) (domain.ValidationResult, error) {
	return m.checkRange(ctx, start, end, excludeID)
}
func (m *mockTripServicer) OccupiedDates(ctx context.Context) ([]time.Time, error) {
	return m.occupiedDates(ctx)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into the chi router.
// This mirrors exactly how main.go wires it in production.
func newHTTPHandler(trips handler.TripServicer, compliance handler.ComplianceServicer, planner handler.PlannerServicer) http.Handler {
	return handler.NewServer(trips, compliance, planner, nil).Routes()
}

// newExportHandler wires a Server carrying only the export dependency.
func newExportHandler(export handler.ExportServicer) http.Handler {
	return handler.NewServer(nil, nil, nil, export).Routes()
}

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:        uuid.New(),
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Countries: []string{"FR", "IT"},
		Purpose:   "holiday",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func dateStr(t time.Time) string {
	return t.Format("2006-01-02")
}

// ---- POST /trips -----------------------------------------------------------

func TestCreateTrip_201(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"start_date": dateStr(fixture.StartDate),
		"end_date":   dateStr(fixture.EndDate),
		"countries":  fixture.Countries,
		"purpose":    fixture.Purpose,
	})

	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID.String(), resp["id"])
	assert.Equal(t, "2025-06-01", resp["start_date"])
	assert.Equal(t, float64(15), resp["duration_days"])
}

func TestCreateTrip_400_MissingCountries(t *testing.T) {
	// Validation of the wire shape happens before the service is called,
	// so no mock method needs to be set.
	svc := &mockTripServicer{}

	body := jsonBody(t, map[string]any{
		"start_date": "2025-06-01",
		"end_date":   "2025-06-15",
	})

	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTrip_400_MalformedDate(t *testing.T) {
	svc := &mockTripServicer{}

	body := jsonBody(t, map[string]any{
		"start_date": "June 1st 2025",
		"end_date":   "2025-06-15",
		"countries":  []string{"FR"},
	})

	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTrip_422_ValidationError(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
		},
	}

	body := jsonBody(t, map[string]any{
		"start_date": "2025-06-15",
		"end_date":   "2025-06-01",
		"countries":  []string{"FR"},
	})

	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "validation_failed", resp["error"]["code"])
	assert.NotEmpty(t, resp["error"]["message"])
}

func TestCreateTrip_409_DateConflict(t *testing.T) {
	occupying := tripFixture()
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", &domain.ConflictError{
				Result: domain.ValidationResult{
					Conflicts: []domain.Trip{occupying},
					Message:   "dates already used by trip to FR, IT",
				},
			})
		},
	}

	body := jsonBody(t, map[string]any{
		"start_date": "2025-06-01",
		"end_date":   "2025-06-15",
		"countries":  []string{"DE"},
	})

	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Error     map[string]string `json:"error"`
		Conflicts []map[string]any  `json:"conflicts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "date_conflict", resp.Error["code"])
	assert.Contains(t, resp.Error["message"], "FR, IT")
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, occupying.ID.String(), resp.Conflicts[0]["id"])
}

// ---- GET /trips ------------------------------------------------------------

func TestListTrips_200(t *testing.T) {
	trips := []domain.Trip{tripFixture(), tripFixture()}
	svc := &mockTripServicer{
		list: func(_ context.Context) ([]domain.Trip, error) { return trips, nil },
	}

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 2)
}

func TestListTrips_200_Empty(t *testing.T) {
	svc := &mockTripServicer{
		list: func(_ context.Context) ([]domain.Trip, error) { return []domain.Trip{}, nil },
	}

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	// Must be a JSON array, not null.
	assert.Equal(t, "[]\n", rec.Body.String())
}

// ---- GET /trips/{id} -------------------------------------------------------

func TestGetTrip_200(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			assert.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID.String(), resp["id"])
}

func TestGetTrip_404(t *testing.T) {
	svc := &mockTripServicer{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTrip_404_MalformedID(t *testing.T) {
	svc := &mockTripServicer{}

	req := httptest.NewRequest(http.MethodGet, "/trips/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- PUT /trips/{id} -------------------------------------------------------

func TestUpdateTrip_200(t *testing.T) {
	fixture := tripFixture()
	fixture.Purpose = "conference"
	svc := &mockTripServicer{
		update: func(_ context.Context, trip domain.Trip) (domain.Trip, error) {
			assert.Equal(t, fixture.ID, trip.ID)
			assert.Equal(t, "conference", trip.Purpose)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"start_date": dateStr(fixture.StartDate),
		"end_date":   dateStr(fixture.EndDate),
		"countries":  fixture.Countries,
		"purpose":    "conference",
	})

	req := httptest.NewRequest(http.MethodPut, "/trips/"+fixture.ID.String(), body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ---- DELETE /trips/{id} ----------------------------------------------------

func TestDeleteTrip_204(t *testing.T) {
	id := uuid.New()
	svc := &mockTripServicer{
		delete: func(_ context.Context, got uuid.UUID) error {
			assert.Equal(t, id, got)
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/trips/"+id.String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDeleteTrip_404(t *testing.T) {
	svc := &mockTripServicer{
		delete: func(_ context.Context, _ uuid.UUID) error { return domain.ErrNotFound },
	}

	req := httptest.NewRequest(http.MethodDelete, "/trips/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- POST /trips/check -----------------------------------------------------

func TestCheckTripDates_200_Valid(t *testing.T) {
	svc := &mockTripServicer{
		checkRange: func(_ context.Context, start, end time.Time, excludeID uuid.UUID) (domain.ValidationResult, error) {
			assert.True(t, excludeID == uuid.Nil)
			return domain.ValidationResult{Valid: true, Conflicts: []domain.Trip{}}, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"start_date": "2025-07-01",
		"end_date":   "2025-07-10",
	})

	req := httptest.NewRequest(http.MethodPost, "/trips/check", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["valid"])
}

func TestCheckTripDates_200_Conflict(t *testing.T) {
	conflicting := tripFixture()
	svc := &mockTripServicer{
		checkRange: func(_ context.Context, _, _ time.Time, excludeID uuid.UUID) (domain.ValidationResult, error) {
			assert.Equal(t, conflicting.ID, excludeID)
			return domain.ValidationResult{
				Valid:     false,
				Conflicts: []domain.Trip{conflicting},
				Message:   "dates already used by trip to FR, IT",
			}, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"start_date":      "2025-06-10",
		"end_date":        "2025-06-20",
		"exclude_trip_id": conflicting.ID.String(),
	})

	req := httptest.NewRequest(http.MethodPost, "/trips/check", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid     bool             `json:"valid"`
		Conflicts []map[string]any `json:"conflicts"`
		Message   string           `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Valid)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, conflicting.ID.String(), resp.Conflicts[0]["id"])
	assert.NotEmpty(t, resp.Message)
}

// ---- GET /calendar/occupied -------------------------------------------------

func TestGetOccupiedDates_200(t *testing.T) {
	svc := &mockTripServicer{
		occupiedDates: func(_ context.Context) ([]time.Time, error) {
			return []time.Time{
				time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/calendar/occupied", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Dates []string `json:"dates"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"2025-06-01", "2025-06-02"}, resp.Dates)
}
