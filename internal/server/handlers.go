package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/odos/internal/catalog"
	"github.com/claude/odos/internal/inventory"
	"github.com/claude/odos/internal/models"
	"github.com/claude/odos/internal/session"
	"github.com/claude/odos/internal/storage"
)

const defaultWorkoutLimit = 20

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	muscle, err := models.ParseMuscleGroup(q.Get("muscle"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	equipment, err := models.ParseEquipment(q.Get("equipment"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	defs := s.catalog.Filter(catalog.Selection{Muscle: muscle, Equipment: equipment, Query: q.Get("q")})
	writeJSON(w, http.StatusOK, defs)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	def, err := s.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleCatalogStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Status())
}

func (s *Server) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Refresh(r.Context()); err != nil {
		s.log.Error("catalog refresh error", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.Status())
}

type enumEntry struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (s *Server) handleMuscleGroups(w http.ResponseWriter, r *http.Request) {
	out := make([]enumEntry, 0, len(models.MuscleGroups))
	for _, g := range models.MuscleGroups {
		out = append(out, enumEntry{Value: string(g), Label: g.Label()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEquipment(w http.ResponseWriter, r *http.Request) {
	out := make([]enumEntry, 0, len(models.EquipmentKinds))
	for _, e := range models.EquipmentKinds {
		out = append(out, enumEntry{Value: string(e), Label: e.Label()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	var (
		records []models.WorkoutRecord
		err     error
	)
	if r.URL.Query().Get("start") != "" {
		start, end, perr := parseTimeRange(r)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": perr.Error()})
			return
		}
		records, err = s.history.QueryWorkouts(r.Context(), start, end)
	} else {
		limit := defaultWorkoutLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, err = strconv.Atoi(v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
				return
			}
		}
		records, err = s.history.ListWorkouts(r.Context(), limit)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	total, err := s.history.CountWorkouts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}
	rec, err := s.history.GetWorkout(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleLastPerformance(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("exercise")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}
	ex, err := s.history.LastPerformance(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ex == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no history for " + name})
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// writeError maps domain sentinels onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionActive),
		errors.Is(err, session.ErrNoActiveSession),
		errors.Is(err, session.ErrNotStarted):
		status = http.StatusConflict
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, inventory.ErrNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, session.ErrExerciseNotFound),
		errors.Is(err, session.ErrSetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrInvalidSet),
		errors.Is(err, session.ErrEmptyExerciseName),
		errors.Is(err, inventory.ErrEmptyName):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = parseTimeParam(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = time.Now()
		return
	}
	end, err = time.Parse(time.RFC3339, endStr)
	if err != nil {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// End of day for date-only
		end = end.Add(24 * time.Hour)
	}
	return
}

func parseTimeParam(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Parse("2006-01-02", v)
	}
	return t, nil
}
