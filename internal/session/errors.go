package session

import "errors"

var (
	ErrSessionActive     = errors.New("a workout session is already active")
	ErrNoActiveSession   = errors.New("no active workout session")
	ErrNotStarted        = errors.New("workout session has no start time")
	ErrExerciseNotFound  = errors.New("exercise not in session")
	ErrSetNotFound       = errors.New("set not in exercise")
	ErrInvalidSet        = errors.New("weight and reps must not be negative")
	ErrEmptyExerciseName = errors.New("exercise name must not be empty")
)
