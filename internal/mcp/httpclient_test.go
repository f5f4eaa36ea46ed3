package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/store"
	"github.com/claude/mapty/internal/workout"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and bodies.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.Method+" "+r.URL.Path]
		if !ok {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

func sampleWorkout(id string) workout.Workout {
	f := workout.Factory{
		Now:   func() time.Time { return time.Date(2026, 4, 2, 7, 0, 0, 0, time.UTC) },
		NewID: func() string { return id },
	}
	return f.Running(workout.Coordinate{Lat: 40, Lng: -73.9}, 5, 25, 180)
}

// TestListWorkouts verifies the list endpoint is decoded with variant fields.
func TestListWorkouts(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusOK, []workout.Workout{sampleWorkout("a")})
		},
	})
	defer ts.Close()

	ws, err := NewHTTPClient(ts.URL + "/").ListWorkouts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ws) != 1 {
		t.Fatalf("got %d workouts, want 1", len(ws))
	}
	if r, ok := ws[0].Running(); !ok || r.PaceMinPerKm != 5 {
		t.Errorf("running = %+v ok=%v, want pace 5", r, ok)
	}
}

// TestGetWorkoutNotFound verifies a 404 surfaces as store.ErrNotFound.
func TestGetWorkoutNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/workouts/missing": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).GetWorkout(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want store.ErrNotFound", err)
	}
}

// TestLogWorkout verifies the click coordinate and form values travel in one body.
func TestLogWorkout(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["lat"] != 40.0 || body["lng"] != -73.9 || body["type"] != "Running" || body["distance"] != "5" {
				t.Errorf("body = %v", body)
			}
			writeTestJSON(t, w, http.StatusCreated, sampleWorkout("new"))
		},
	})
	defer ts.Close()

	w, err := NewHTTPClient(ts.URL).LogWorkout(context.Background(),
		workout.Coordinate{Lat: 40, Lng: -73.9},
		app.FormInput{Type: "Running", Distance: "5", Duration: "25", Cadence: "180"})
	if err != nil {
		t.Fatal(err)
	}
	if w.ID() != "new" {
		t.Errorf("id = %q, want new", w.ID())
	}
}

// TestLogWorkoutRejected verifies a 422 comes back as a ValidationError.
func TestLogWorkoutRejected(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusUnprocessableEntity, map[string]string{
				"error": app.AlertInvalidInput, "field": "distance", "value": "-1", "reason": "must be positive",
			})
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).LogWorkout(context.Background(), workout.Coordinate{}, app.FormInput{Type: "Running", Distance: "-1"})
	var verr *app.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *app.ValidationError", err)
	}
	if verr.Field != "distance" || verr.Value != "-1" {
		t.Errorf("validation error = %+v", verr)
	}
}

// TestFocusWorkoutConflict verifies a 409 maps to app.ErrMapUnavailable.
func TestFocusWorkoutConflict(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/workouts/a/focus": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusConflict, map[string]string{"error": "map is not available"})
		},
	})
	defer ts.Close()

	err := NewHTTPClient(ts.URL).FocusWorkout(context.Background(), "a")
	if !errors.Is(err, app.ErrMapUnavailable) {
		t.Errorf("err = %v, want app.ErrMapUnavailable", err)
	}
}

// TestServerError verifies unexpected statuses carry the body.
func TestServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	if _, err := NewHTTPClient(ts.URL).ListWorkouts(context.Background()); err == nil {
		t.Fatal("expected error for 500")
	}
}

// TestWorkoutIDEscaped verifies ids with reserved characters stay a single
// path segment and never become a query string.
func TestWorkoutIDEscaped(t *testing.T) {
	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.EscapedPath(), r.URL.RawQuery
		writeTestJSON(t, w, http.StatusNotFound, map[string]string{"error": "workout not found"})
	}))
	defer ts.Close()
	client := NewHTTPClient(ts.URL)

	client.GetWorkout(context.Background(), "a/b?c")
	if gotPath != "/api/v1/workouts/a%2Fb%3Fc" || gotQuery != "" {
		t.Errorf("get path = %q query = %q", gotPath, gotQuery)
	}

	client.FocusWorkout(context.Background(), "../state")
	if gotPath != "/api/v1/workouts/..%2Fstate/focus" {
		t.Errorf("focus path = %q", gotPath)
	}
}
