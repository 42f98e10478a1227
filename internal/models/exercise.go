package models

// ExerciseDefinition is one entry of the remote exercise catalog. JSON
// names follow the free-exercise-db dist format.
type ExerciseDefinition struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Force            *string  `json:"force"`
	Level            string   `json:"level"`
	Mechanic         *string  `json:"mechanic"`
	Equipment        *string  `json:"equipment"`
	PrimaryMuscles   []string `json:"primaryMuscles"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Instructions     []string `json:"instructions"`
	Category         string   `json:"category"`
	Images           []string `json:"images,omitempty"`
}

// EquipmentText returns the raw equipment text, or "" when absent.
func (d ExerciseDefinition) EquipmentText() string {
	if d.Equipment == nil {
		return ""
	}
	return *d.Equipment
}

// EquipmentClass classifies the entry's equipment text.
func (d ExerciseDefinition) EquipmentClass() Equipment {
	return MatchEquipment(d.EquipmentText())
}
