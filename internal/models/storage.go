package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutRow is a row of the workouts table.
type WorkoutRow struct {
	Seq         int64
	ID          uuid.UUID
	Name        string
	StartedAt   time.Time
	CompletedAt time.Time
	DurationNs  int64
}

// WorkoutExerciseRow is a row of the workout_exercises table. List-valued
// fields are stored as JSON text.
type WorkoutExerciseRow struct {
	ID              uuid.UUID
	WorkoutID       uuid.UUID
	Position        int
	CatalogID       string
	Name            string
	Equipment       string
	Level           string
	PrimaryMuscles  string
	Instructions    string
	RecommendedReps string
	Notes           string
}

// WorkoutSetRow is a row of the workout_sets table.
type WorkoutSetRow struct {
	ID         uuid.UUID
	ExerciseID uuid.UUID
	Position   int
	Weight     float64
	Reps       int
	Completed  bool
	Previous   string
}
