package plan

// Definition is a named default plan: canonical exercise names resolved
// against the catalog by exact name.
type Definition struct {
	Name      string   `yaml:"name" json:"name"`
	Exercises []string `yaml:"exercises" json:"exercises"`
}

// DefaultDefinitions are the built-in plans.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "Upper Body", Exercises: []string{"Bench Press", "Overhead Press", "Pull-ups", "Rows", "Lateral Raises"}},
		{Name: "Lower Body", Exercises: []string{"Squats", "Deadlifts", "Leg Press", "Calf Raises", "Leg Extensions"}},
		{Name: "Push", Exercises: []string{"Bench Press", "Overhead Press", "Incline Press", "Tricep Extensions", "Lateral Raises"}},
		{Name: "Pull", Exercises: []string{"Pull-ups", "Rows", "Face Pulls", "Bicep Curls", "Lat Pulldowns"}},
	}
}

// DefaultEquipment is the equipment list sent with every generation request.
func DefaultEquipment() []string {
	return []string{
		"Barbell", "Dumbbell", "Cable Machine", "Smith Machine",
		"Pull-up Bar", "Bench", "Squat Rack", "Leg Press Machine",
		"Lat Pulldown Machine", "Resistance Bands",
	}
}

const (
	DefaultExperienceLevel = "Intermediate"
	DefaultDurationMinutes = 60
)
