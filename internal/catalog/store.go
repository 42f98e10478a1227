// Package catalog holds the exercise catalog and the pure filter and name
// reconciliation functions that run over it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/odos/internal/metrics"
	"github.com/claude/odos/internal/models"
)

// ErrNotFound is returned when an exercise id is not in the catalog.
var ErrNotFound = errors.New("exercise not found")

// Status describes the last refresh.
type Status struct {
	Count     int       `json:"count"`
	FetchedAt time.Time `json:"fetched_at,omitzero"`
	LastError string    `json:"last_error,omitempty"`
}

// Store holds the current catalog. It is replaced wholesale on refresh and
// read-only otherwise, so readers never see a partial catalog.
type Store struct {
	source  Source
	log     *slog.Logger
	metrics *metrics.Manager
	now     func() time.Time

	mu        sync.RWMutex
	defs      []models.ExerciseDefinition
	byID      map[string]int
	fetchedAt time.Time
	lastErr   error
}

// NewStore creates an empty store that refreshes from source.
func NewStore(source Source, logger *slog.Logger, m *metrics.Manager) *Store {
	return &Store{
		source:  source,
		log:     logger,
		metrics: m,
		now:     time.Now,
		byID:    map[string]int{},
	}
}

// Refresh fetches the catalog and swaps it in. On failure the current
// contents are kept and the error is recorded in Status.
func (s *Store) Refresh(ctx context.Context) error {
	defs, err := s.source.Fetch(ctx)
	s.metrics.CounterCatalogRefresh.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.log.Error("catalog refresh failed", "error", err)
		return fmt.Errorf("refreshing catalog: %w", err)
	}

	s.Replace(defs)
	s.log.Info("catalog refreshed", "exercises", len(defs))
	return nil
}

// Replace installs defs as the full catalog.
func (s *Store) Replace(defs []models.ExerciseDefinition) {
	byID := make(map[string]int, len(defs))
	for i, d := range defs {
		if _, dup := byID[d.ID]; !dup {
			byID[d.ID] = i
		}
	}

	s.mu.Lock()
	s.defs = defs
	s.byID = byID
	s.fetchedAt = s.now()
	s.lastErr = nil
	s.mu.Unlock()

	s.metrics.GaugeCatalogSize.Set(float64(len(defs)))
}

// All returns the catalog in source order. Callers must not modify the
// returned definitions.
func (s *Store) All() []models.ExerciseDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defs
}

// Get returns the definition with the given id.
func (s *Store) Get(id string) (models.ExerciseDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return models.ExerciseDefinition{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.defs[i], nil
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{Count: len(s.defs), FetchedAt: s.fetchedAt}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Filter applies sel to the current catalog.
func (s *Store) Filter(sel Selection) []models.ExerciseDefinition {
	return Filter(s.All(), sel)
}
