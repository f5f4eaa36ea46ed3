package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/mapview"
	"github.com/claude/mapty/internal/store"
	"github.com/claude/mapty/internal/workout"
	"github.com/go-chi/chi/v5"
)

// stateResponse is everything the web page draws.
type stateResponse struct {
	app.State
	Map     mapview.State `json:"map"`
	Entries []app.Entry   `json:"entries"`
	Alerts  []string      `json:"alerts"`
}

// LogRequest is a map click and a form submission in one body.
type LogRequest struct {
	workout.Coordinate
	app.FormInput
}

// state reads the views inside the controller lock so the count, the
// entries and the markers describe the same moment.
func (s *Server) state() stateResponse {
	var resp stateResponse
	s.app.Inspect(func(st app.State) {
		resp = stateResponse{
			State:   st,
			Map:     s.views.Canvas.Snapshot(),
			Entries: s.views.List.Entries(),
			Alerts:  s.views.Alerts.Messages(),
		}
	})
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleMapClick(w http.ResponseWriter, r *http.Request) {
	var at workout.Coordinate
	if err := json.NewDecoder(r.Body).Decode(&at); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.views.Canvas.Click(at); err != nil {
		if errors.Is(err, mapview.ErrNotInitialized) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleSelectVariant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	kind, ok := workout.ParseKind(body.Type)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown workout type " + body.Type})
		return
	}
	s.app.SelectVariant(kind)
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.app.Cancel()
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in app.FormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	wo, err := s.app.Submit(r.Context(), in)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	s.log.Info("workout submitted", "id", wo.ID(), "user", userInfoFromContext(r).Login)
	writeJSON(w, http.StatusCreated, wo)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	ws := s.app.Workouts()
	if ws == nil {
		ws = []workout.Workout{}
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleLogWorkout(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	wo, err := s.app.Log(r.Context(), req.Coordinate, req.FormInput)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	s.log.Info("workout logged via API", "id", wo.ID(), "user", userInfoFromContext(r).Login)
	writeJSON(w, http.StatusCreated, wo)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	wo, err := s.app.Workout(workoutID(r))
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (s *Server) handleFocusWorkout(w http.ResponseWriter, r *http.Request) {
	if err := s.app.HandleListClick(workoutID(r)); err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

// workoutID is the decoded {id} segment. chi matches on the raw path, so
// an escaped "/" arrives still encoded.
func workoutID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

// writeAppError maps controller errors to status codes.
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":  app.AlertInvalidInput,
			"field":  verr.Field,
			"value":  verr.Value,
			"reason": verr.Reason,
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
	case errors.Is(err, app.ErrFormClosed), errors.Is(err, app.ErrMapUnavailable):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
