package models

// WorkoutRequest describes the workout a generator is asked to produce.
type WorkoutRequest struct {
	Type            string   `json:"type"`
	Equipment       []string `json:"equipment"`
	ExperienceLevel string   `json:"experience_level"`
	DurationMinutes int      `json:"duration_minutes"`
}

// ExerciseRecommendation is one exercise of a generated plan. Field names
// match the JSON the generator is instructed to emit.
type ExerciseRecommendation struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	RepsRange   string `json:"repsRange"`
	MuscleGroup string `json:"muscleGroup"`
	Notes       string `json:"notes,omitempty"`
}
