package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Set is one logged set of an exercise.
type Set struct {
	ID        uuid.UUID `json:"id"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	Completed bool      `json:"completed"`
	// Previous is a display annotation taken from the same exercise's last
	// recorded set, e.g. "100 kg x 5". Empty when there is no history.
	Previous string `json:"previous,omitempty"`
}

// NewSet returns a zero-value set with a fresh id.
func NewSet() Set {
	return Set{ID: uuid.New()}
}

// Summary formats the set as "100 kg x 5".
func (s Set) Summary() string {
	return fmt.Sprintf("%s kg x %d", strconv.FormatFloat(s.Weight, 'f', -1, 64), s.Reps)
}

// WorkoutExercise is an exercise inside a workout: a snapshot of the
// catalog entry it was created from plus the sets logged against it.
type WorkoutExercise struct {
	ID              uuid.UUID `json:"id"`
	CatalogID       string    `json:"catalog_id"`
	Name            string    `json:"name"`
	Instructions    []string  `json:"instructions,omitempty"`
	Equipment       string    `json:"equipment,omitempty"`
	Level           string    `json:"level,omitempty"`
	PrimaryMuscles  []string  `json:"primary_muscles,omitempty"`
	Sets            []Set     `json:"sets"`
	RecommendedReps string    `json:"recommended_reps,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// NewWorkoutExercise snapshots a catalog entry into a new exercise with a
// fresh id and no sets.
func NewWorkoutExercise(def ExerciseDefinition) WorkoutExercise {
	return WorkoutExercise{
		ID:             uuid.New(),
		CatalogID:      def.ID,
		Name:           def.Name,
		Instructions:   append([]string(nil), def.Instructions...),
		Equipment:      def.EquipmentText(),
		Level:          def.Level,
		PrimaryMuscles: append([]string(nil), def.PrimaryMuscles...),
		Sets:           []Set{},
	}
}

// Clone returns a deep copy sharing no slices with e.
func (e WorkoutExercise) Clone() WorkoutExercise {
	c := e
	c.Instructions = append([]string(nil), e.Instructions...)
	c.PrimaryMuscles = append([]string(nil), e.PrimaryMuscles...)
	c.Sets = append(make([]Set, 0, len(e.Sets)), e.Sets...)
	return c
}

// Renew returns a deep copy with fresh exercise and set ids.
func (e WorkoutExercise) Renew() WorkoutExercise {
	c := e.Clone()
	c.ID = uuid.New()
	for i := range c.Sets {
		c.Sets[i].ID = uuid.New()
	}
	return c
}

// CloneExercises deep-copies a list of exercises.
func CloneExercises(list []WorkoutExercise) []WorkoutExercise {
	out := make([]WorkoutExercise, len(list))
	for i, e := range list {
		out[i] = e.Clone()
	}
	return out
}

// WorkoutRecord is an immutable history entry written when a session
// completes.
type WorkoutRecord struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Duration    time.Duration     `json:"duration_ns"`
	Exercises   []WorkoutExercise `json:"exercises"`
}

// Exercise returns the first exercise in the record with the given name.
func (r WorkoutRecord) Exercise(name string) (WorkoutExercise, bool) {
	for _, e := range r.Exercises {
		if e.Name == name {
			return e, true
		}
	}
	return WorkoutExercise{}, false
}
