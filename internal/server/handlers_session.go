package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/odos/internal/inventory"
	"github.com/claude/odos/internal/models"
	"github.com/claude/odos/internal/session"
)

type startSessionRequest struct {
	Name string `json:"name"`
	Plan string `json:"plan"`
}

type renameSessionRequest struct {
	Name string `json:"name"`
}

// addExerciseRequest names either a catalog entry or an inventory entry.
type addExerciseRequest struct {
	ExerciseID string `json:"exercise_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

// handleStartSession starts an empty session, or one pre-filled from a
// plan when the body names one.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	var (
		snap session.Snapshot
		err  error
	)
	if plan := strings.TrimSpace(req.Plan); plan != "" {
		res, _ := s.planner.Resolve(r.Context(), plan)
		name := req.Name
		if strings.TrimSpace(name) == "" {
			name = res.Plan
		}
		snap, err = s.tracker.StartWithExercises(r.Context(), name, res.Exercises)
	} else {
		snap, err = s.tracker.Start(r.Context(), req.Name)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleRenameSession(w http.ResponseWriter, r *http.Request) {
	var req renameSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.tracker.Rename(req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.tracker.Complete(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Cancel(); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddSessionExercise(w http.ResponseWriter, r *http.Request) {
	var req addExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var (
		ex  models.WorkoutExercise
		err error
	)
	switch {
	case req.ExerciseID != "":
		def, gerr := s.catalog.Get(req.ExerciseID)
		if gerr != nil {
			s.writeError(w, gerr)
			return
		}
		ex, err = s.tracker.AddExercise(r.Context(), def)
	case strings.TrimSpace(req.Name) != "":
		if !s.inventory.Contains(req.Name) {
			s.writeError(w, fmt.Errorf("%w: %s", inventory.ErrNotFound, req.Name))
			return
		}
		ex, err = s.tracker.AddManualExercise(r.Context(), req.Name)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_id or name required"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleRemoveSessionExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.tracker.RemoveExercise(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	set, err := s.tracker.AddSet(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	exID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	setID, ok := parseUUIDParam(w, r, "setID")
	if !ok {
		return
	}
	var u session.SetUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	set, err := s.tracker.UpdateSet(exID, setID, u)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	exID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	setID, ok := parseUUIDParam(w, r, "setID")
	if !ok {
		return
	}
	if err := s.tracker.RemoveSet(exID, setID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + key})
		return uuid.Nil, false
	}
	return id, true
}
