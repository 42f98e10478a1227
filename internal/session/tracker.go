// Package session owns the single in-progress workout and its lifecycle:
// Idle, then Active, then back to Idle by completing or cancelling.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/odos/internal/metrics"
	"github.com/claude/odos/internal/models"
)

// State is the lifecycle state of the tracker.
type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
)

// HistoryWriter appends completed workouts to history.
type HistoryWriter interface {
	AppendWorkout(ctx context.Context, rec models.WorkoutRecord) error
}

// PreviousLookup finds the most recent recorded performance of an exercise.
// A nil result with a nil error means no history.
type PreviousLookup interface {
	LastPerformance(ctx context.Context, name string) (*models.WorkoutExercise, error)
}

// Snapshot is a deep copy of the active session. Elapsed is computed when
// the snapshot is taken.
type Snapshot struct {
	State     State                    `json:"state"`
	Name      string                   `json:"name,omitempty"`
	StartedAt time.Time                `json:"started_at,omitzero"`
	Elapsed   time.Duration            `json:"elapsed_ns"`
	Exercises []models.WorkoutExercise `json:"exercises"`
}

// SetUpdate is a partial edit of a set. Nil fields are left unchanged.
type SetUpdate struct {
	Weight    *float64 `json:"weight,omitempty"`
	Reps      *int     `json:"reps,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
}

// Tracker holds at most one active workout session.
type Tracker struct {
	history  HistoryWriter
	previous PreviousLookup
	now      func() time.Time
	log      *slog.Logger
	metrics  *metrics.Manager

	mu        sync.Mutex
	state     State
	name      string
	startedAt time.Time
	exercises []models.WorkoutExercise
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithPreviousLookup enables "previous" annotations on new sets.
func WithPreviousLookup(p PreviousLookup) Option {
	return func(t *Tracker) { t.previous = p }
}

// NewTracker creates an idle tracker that writes completed sessions to history.
func NewTracker(history HistoryWriter, logger *slog.Logger, m *metrics.Manager, opts ...Option) *Tracker {
	t := &Tracker{
		history: history,
		now:     time.Now,
		log:     logger,
		metrics: m,
		state:   StateIdle,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Start begins an empty session.
func (t *Tracker) Start(ctx context.Context, name string) (Snapshot, error) {
	return t.StartWithExercises(ctx, name, nil)
}

// StartWithExercises begins a session pre-filled with exercises, typically
// a resolved plan. The exercises are copied; sets without a previous
// annotation are annotated from history.
func (t *Tracker) StartWithExercises(ctx context.Context, name string, exercises []models.WorkoutExercise) (Snapshot, error) {
	exercises = models.CloneExercises(exercises)
	for i := range exercises {
		t.annotate(ctx, &exercises[i], 0)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateActive {
		return Snapshot{}, ErrSessionActive
	}

	now := t.now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName(now)
	}
	t.state = StateActive
	t.name = name
	t.startedAt = now
	t.exercises = exercises

	t.log.Info("workout started", "name", name, "exercises", len(exercises))
	return t.snapshotLocked(), nil
}

// DefaultName labels a session by the hour it started.
func DefaultName(start time.Time) string {
	switch h := start.Hour(); {
	case h < 12:
		return "Morning Workout"
	case h < 17:
		return "Afternoon Workout"
	default:
		return "Evening Workout"
	}
}

// Snapshot returns a deep copy of the current session.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	if t.state != StateActive {
		return Snapshot{State: StateIdle, Exercises: []models.WorkoutExercise{}}
	}
	return Snapshot{
		State:     StateActive,
		Name:      t.name,
		StartedAt: t.startedAt,
		Elapsed:   t.elapsedLocked(),
		Exercises: models.CloneExercises(t.exercises),
	}
}

func (t *Tracker) elapsedLocked() time.Duration {
	if t.startedAt.IsZero() {
		return 0
	}
	d := t.now().Sub(t.startedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Rename changes the active session's name. A blank name is ignored.
func (t *Tracker) Rename(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateActive {
		return ErrNoActiveSession
	}
	if name = strings.TrimSpace(name); name != "" {
		t.name = name
	}
	return nil
}

// AddExercise appends def to the session with one zero-value set.
func (t *Tracker) AddExercise(ctx context.Context, def models.ExerciseDefinition) (models.WorkoutExercise, error) {
	if !t.Active() {
		return models.WorkoutExercise{}, ErrNoActiveSession
	}
	return t.appendExercise(ctx, models.NewWorkoutExercise(def))
}

// AddManualExercise appends an exercise known only by name, such as an
// inventory entry, with one zero-value set. It has no catalog id.
func (t *Tracker) AddManualExercise(ctx context.Context, name string) (models.WorkoutExercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.WorkoutExercise{}, ErrEmptyExerciseName
	}
	if !t.Active() {
		return models.WorkoutExercise{}, ErrNoActiveSession
	}
	return t.appendExercise(ctx, models.WorkoutExercise{ID: uuid.New(), Name: name, Sets: []models.Set{}})
}

func (t *Tracker) appendExercise(ctx context.Context, ex models.WorkoutExercise) (models.WorkoutExercise, error) {
	ex.Sets = append(ex.Sets, models.NewSet())
	t.annotate(ctx, &ex, 0)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateActive {
		return models.WorkoutExercise{}, ErrNoActiveSession
	}
	t.exercises = append(t.exercises, ex)
	return ex.Clone(), nil
}

// RemoveExercise drops an exercise and its sets from the session.
func (t *Tracker) RemoveExercise(exerciseID uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, err := t.exerciseIndexLocked(exerciseID)
	if err != nil {
		return err
	}
	t.exercises = append(t.exercises[:i], t.exercises[i+1:]...)
	return nil
}

// AddSet appends a zero-value set to an exercise. No values carry over from
// the previous set; only the "previous" annotation may be filled in.
func (t *Tracker) AddSet(ctx context.Context, exerciseID uuid.UUID) (models.Set, error) {
	t.mu.Lock()
	i, err := t.exerciseIndexLocked(exerciseID)
	if err != nil {
		t.mu.Unlock()
		return models.Set{}, err
	}
	probe := t.exercises[i].Clone()
	t.mu.Unlock()

	// The lookup may hit the history store, so it runs unlocked.
	from := len(probe.Sets)
	probe.Sets = append(probe.Sets, models.NewSet())
	t.annotate(ctx, &probe, from)
	set := probe.Sets[from]

	t.mu.Lock()
	defer t.mu.Unlock()
	i, err = t.exerciseIndexLocked(exerciseID)
	if err != nil {
		return models.Set{}, err
	}
	t.exercises[i].Sets = append(t.exercises[i].Sets, set)
	return set, nil
}

// UpdateSet edits a set in place.
func (t *Tracker) UpdateSet(exerciseID, setID uuid.UUID, u SetUpdate) (models.Set, error) {
	if (u.Weight != nil && *u.Weight < 0) || (u.Reps != nil && *u.Reps < 0) {
		return models.Set{}, ErrInvalidSet
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	i, j, err := t.setIndexLocked(exerciseID, setID)
	if err != nil {
		return models.Set{}, err
	}
	s := &t.exercises[i].Sets[j]
	if u.Weight != nil {
		s.Weight = *u.Weight
	}
	if u.Reps != nil {
		s.Reps = *u.Reps
	}
	if u.Completed != nil {
		s.Completed = *u.Completed
	}
	return *s, nil
}

// RemoveSet deletes a set from an exercise.
func (t *Tracker) RemoveSet(exerciseID, setID uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, j, err := t.setIndexLocked(exerciseID, setID)
	if err != nil {
		return err
	}
	sets := t.exercises[i].Sets
	t.exercises[i].Sets = append(sets[:j], sets[j+1:]...)
	return nil
}

// Complete writes the session to history and returns to Idle. If the
// history write fails the session stays active so nothing is lost.
func (t *Tracker) Complete(ctx context.Context) (models.WorkoutRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateActive {
		return models.WorkoutRecord{}, ErrNoActiveSession
	}
	if t.startedAt.IsZero() {
		return models.WorkoutRecord{}, ErrNotStarted
	}

	completed := t.now()
	rec := models.WorkoutRecord{
		ID:          uuid.New(),
		Name:        t.name,
		StartedAt:   t.startedAt,
		CompletedAt: completed,
		Duration:    t.elapsedLocked(),
		Exercises:   models.CloneExercises(t.exercises),
	}
	if err := t.history.AppendWorkout(ctx, rec); err != nil {
		t.log.Error("saving workout failed", "name", rec.Name, "error", err)
		return models.WorkoutRecord{}, fmt.Errorf("saving workout: %w", err)
	}

	t.resetLocked()
	t.metrics.CounterWorkouts.WithLabelValues(metrics.OutcomeCompleted).Inc()
	t.log.Info("workout completed", "id", rec.ID, "name", rec.Name,
		"duration", rec.Duration.Round(time.Second), "exercises", len(rec.Exercises))

	out := rec
	out.Exercises = models.CloneExercises(rec.Exercises)
	return out, nil
}

// Cancel discards the active session. History is never touched.
func (t *Tracker) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateActive {
		return ErrNoActiveSession
	}
	t.log.Info("workout cancelled", "name", t.name, "exercises", len(t.exercises))
	t.resetLocked()
	t.metrics.CounterWorkouts.WithLabelValues(metrics.OutcomeCancelled).Inc()
	return nil
}

// Active reports whether a session is in progress.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateActive
}

func (t *Tracker) resetLocked() {
	t.state = StateIdle
	t.name = ""
	t.startedAt = time.Time{}
	t.exercises = nil
}

func (t *Tracker) exerciseIndexLocked(id uuid.UUID) (int, error) {
	if t.state != StateActive {
		return -1, ErrNoActiveSession
	}
	for i, e := range t.exercises {
		if e.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrExerciseNotFound, id)
}

func (t *Tracker) setIndexLocked(exerciseID, setID uuid.UUID) (int, int, error) {
	i, err := t.exerciseIndexLocked(exerciseID)
	if err != nil {
		return -1, -1, err
	}
	for j, s := range t.exercises[i].Sets {
		if s.ID == setID {
			return i, j, nil
		}
	}
	return -1, -1, fmt.Errorf("%w: %s", ErrSetNotFound, setID)
}
