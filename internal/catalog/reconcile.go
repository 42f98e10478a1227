package catalog

import (
	"strings"

	"github.com/claude/odos/internal/models"
)

// Reconcile maps a free-form exercise name onto a catalog entry. An exact
// case-insensitive name match wins; otherwise the first entry in catalog
// order whose name contains name, or is contained in it, is returned.
//
// Reconciliation is lossy. A false result is not an error: callers drop the
// name and report it.
func Reconcile(defs []models.ExerciseDefinition, name string) (models.ExerciseDefinition, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return models.ExerciseDefinition{}, false
	}

	for _, d := range defs {
		if strings.ToLower(d.Name) == want {
			return d, true
		}
	}
	for _, d := range defs {
		have := strings.ToLower(d.Name)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return d, true
		}
	}
	return models.ExerciseDefinition{}, false
}

// FindByName returns the entry whose name equals name ignoring case. Default
// plans resolve through this, never through the substring fallback.
func FindByName(defs []models.ExerciseDefinition, name string) (models.ExerciseDefinition, bool) {
	want := strings.TrimSpace(name)
	if want == "" {
		return models.ExerciseDefinition{}, false
	}
	for _, d := range defs {
		if strings.EqualFold(d.Name, want) {
			return d, true
		}
	}
	return models.ExerciseDefinition{}, false
}
