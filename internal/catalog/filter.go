package catalog

import (
	"strings"

	"github.com/claude/odos/internal/models"
)

// Selection is the user's current browse filter. The zero value matches
// every entry.
type Selection struct {
	Muscle    models.MuscleGroup `json:"muscle"`
	Equipment models.Equipment   `json:"equipment"`
	Query     string             `json:"query"`
}

// Filter returns the entries of defs matching sel, in catalog order. The
// muscle, equipment and text predicates are applied in that order.
func Filter(defs []models.ExerciseDefinition, sel Selection) []models.ExerciseDefinition {
	out := make([]models.ExerciseDefinition, 0, len(defs))
	tokens := sel.Muscle.Muscles()
	query := strings.ToLower(sel.Query)

	for _, d := range defs {
		if !matchesMuscle(d, tokens) {
			continue
		}
		if !matchesEquipment(d, sel.Equipment) {
			continue
		}
		if !matchesQuery(d, query) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// matchesMuscle reports whether any primary muscle is one of tokens. No
// tokens means no constraint.
func matchesMuscle(d models.ExerciseDefinition, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	for _, m := range d.PrimaryMuscles {
		for _, tok := range tokens {
			if strings.EqualFold(m, tok) {
				return true
			}
		}
	}
	return false
}

func matchesEquipment(d models.ExerciseDefinition, e models.Equipment) bool {
	if e == "" || e == models.EquipmentAll {
		return true
	}
	return d.EquipmentClass() == e
}

// matchesQuery expects query already lowercased. Whitespace is matched
// literally; only the empty query matches everything.
func matchesQuery(d models.ExerciseDefinition, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(d.Name), query) {
		return true
	}
	for _, m := range d.PrimaryMuscles {
		if strings.Contains(strings.ToLower(m), query) {
			return true
		}
	}
	return false
}
