package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/claude/odos/internal/catalog"
	"github.com/claude/odos/internal/inventory"
	"github.com/claude/odos/internal/metrics"
	"github.com/claude/odos/internal/plan"
	"github.com/claude/odos/internal/session"
	"github.com/claude/odos/internal/storage"
)

// Deps are the components the HTTP API exposes.
type Deps struct {
	Catalog   *catalog.Store
	Inventory *inventory.Store
	Tracker   *session.Tracker
	Planner   *plan.Planner
	History   *storage.DB
	Metrics   *metrics.Manager
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog   *catalog.Store
	inventory *inventory.Store
	tracker   *session.Tracker
	planner   *plan.Planner
	history   *storage.DB
	metrics   *metrics.Manager
	log       *slog.Logger
	whois     WhoIser
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(deps Deps, log *slog.Logger) *Server {
	s := &Server{
		catalog:   deps.Catalog,
		inventory: deps.Inventory,
		tracker:   deps.Tracker,
		planner:   deps.Planner,
		history:   deps.History,
		metrics:   deps.Metrics,
		log:       log,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale makes request logs carry the tailnet identity of the caller.
// Must be called before serving.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(Identity(func() WhoIser { return s.whois }))
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)

	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)

		r.Get("/exercises", s.handleListExercises)
		r.Get("/exercises/{id}", s.handleGetExercise)
		r.Get("/catalog", s.handleCatalogStatus)
		r.Post("/catalog/refresh", s.handleCatalogRefresh)
		r.Get("/muscle-groups", s.handleMuscleGroups)
		r.Get("/equipment", s.handleEquipment)

		r.Get("/inventory", s.handleListInventory)
		r.Post("/inventory", s.handleAddInventory)
		r.Delete("/inventory/{name}", s.handleRemoveInventory)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/", s.handleStartSession)
			r.Patch("/", s.handleRenameSession)
			r.Post("/complete", s.handleCompleteSession)
			r.Post("/cancel", s.handleCancelSession)
			r.Post("/exercises", s.handleAddSessionExercise)
			r.Delete("/exercises/{id}", s.handleRemoveSessionExercise)
			r.Post("/exercises/{id}/sets", s.handleAddSet)
			r.Patch("/exercises/{id}/sets/{setID}", s.handleUpdateSet)
			r.Delete("/exercises/{id}/sets/{setID}", s.handleRemoveSet)
		})

		r.Get("/plans", s.handleListPlans)
		r.Get("/plans/{name}", s.handleResolvePlan)
		r.Post("/plans/{name}/generate", s.handleGeneratePlan)

		r.Get("/workouts", s.handleQueryWorkouts)
		r.Get("/workouts/last", s.handleLastPerformance)
		r.Get("/workouts/{id}", s.handleGetWorkout)
	})
}
