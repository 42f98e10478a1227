package models

import (
	"fmt"
	"strings"
)

// MuscleGroup is a user-facing muscle selection. Each group maps to the raw
// muscle tokens used by the exercise catalog.
type MuscleGroup string

const (
	MuscleAll        MuscleGroup = "all"
	MuscleChest      MuscleGroup = "chest"
	MuscleUpperBack  MuscleGroup = "upper_back"
	MuscleLowerBack  MuscleGroup = "lower_back"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleForearms   MuscleGroup = "forearms"
	MuscleQuadriceps MuscleGroup = "quadriceps"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleCalves     MuscleGroup = "calves"
	MuscleAbs        MuscleGroup = "abs"
	MuscleObliques   MuscleGroup = "obliques"
)

// MuscleGroups lists every group in display order, "all" first.
var MuscleGroups = []MuscleGroup{
	MuscleAll,
	MuscleChest,
	MuscleUpperBack,
	MuscleLowerBack,
	MuscleShoulders,
	MuscleBiceps,
	MuscleTriceps,
	MuscleForearms,
	MuscleQuadriceps,
	MuscleHamstrings,
	MuscleCalves,
	MuscleAbs,
	MuscleObliques,
}

var muscleTokens = map[MuscleGroup][]string{
	MuscleAll:        nil,
	MuscleChest:      {"chest"},
	MuscleUpperBack:  {"lats", "traps"},
	MuscleLowerBack:  {"lower_back"},
	MuscleShoulders:  {"shoulders", "delts"},
	MuscleBiceps:     {"biceps"},
	MuscleTriceps:    {"triceps"},
	MuscleForearms:   {"forearms"},
	MuscleQuadriceps: {"quadriceps"},
	MuscleHamstrings: {"hamstrings", "glutes"},
	MuscleCalves:     {"calves"},
	MuscleAbs:        {"abdominals"},
	MuscleObliques:   {"abductors", "adductors"},
}

var muscleLabels = map[MuscleGroup]string{
	MuscleAll:        "All",
	MuscleChest:      "Chest",
	MuscleUpperBack:  "Upper Back",
	MuscleLowerBack:  "Lower Back",
	MuscleShoulders:  "Shoulders",
	MuscleBiceps:     "Biceps",
	MuscleTriceps:    "Triceps",
	MuscleForearms:   "Forearms",
	MuscleQuadriceps: "Quadriceps",
	MuscleHamstrings: "Hamstrings",
	MuscleCalves:     "Calves",
	MuscleAbs:        "Abs",
	MuscleObliques:   "Obliques",
}

// Muscles returns the catalog tokens for the group. "all" returns nil,
// which callers treat as "no constraint".
func (g MuscleGroup) Muscles() []string {
	return muscleTokens[g]
}

// Label returns the display name, e.g. "Upper Back".
func (g MuscleGroup) Label() string {
	if l, ok := muscleLabels[g]; ok {
		return l
	}
	return string(g)
}

// ParseMuscleGroup accepts a slug or label in any case, with spaces, dashes
// or underscores as separators. An empty string parses as MuscleAll.
func ParseMuscleGroup(s string) (MuscleGroup, error) {
	key := normalizeEnumKey(s)
	if key == "" {
		return MuscleAll, nil
	}
	if key == "quads" {
		return MuscleQuadriceps, nil
	}
	for _, g := range MuscleGroups {
		if string(g) == key {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown muscle group %q", s)
}

func normalizeEnumKey(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	return strings.Join(strings.Fields(strings.ReplaceAll(key, "_", " ")), "_")
}
