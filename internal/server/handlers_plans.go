package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/odos/internal/plan"
)

type resolveResponse struct {
	plan.Resolution
	Generating bool `json:"generating"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.planner.Plans())
}

// handleResolvePlan returns the plan's current exercises. A default list
// may be replaced by a generated one later; generating says so.
func (s *Server) handleResolvePlan(w http.ResponseWriter, r *http.Request) {
	res, gen := s.planner.Resolve(r.Context(), chi.URLParam(r, "name"))
	writeJSON(w, http.StatusOK, resolveResponse{Resolution: res, Generating: running(gen)})
}

func running(g *plan.Generation) bool {
	if g == nil {
		return false
	}
	select {
	case <-g.Done():
		return false
	default:
		return true
	}
}

// handleGeneratePlan runs generation and waits for it. If the client goes
// away the generation still finishes and is cached.
func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	gen := s.planner.Generate(chi.URLParam(r, "name"))
	res, err := gen.Wait(r.Context())
	if err != nil {
		s.log.Warn("plan generation failed", "plan", gen.Plan(), "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}
