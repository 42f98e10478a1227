package models

import (
	"fmt"
	"strings"
)

// Equipment is the closed set of equipment classes the catalog can be
// filtered by. Catalog entries carry free text which MatchEquipment maps
// onto one of these.
type Equipment string

const (
	EquipmentAll        Equipment = "all"
	EquipmentBodyweight Equipment = "bodyweight"
	EquipmentDumbbell   Equipment = "dumbbell"
	EquipmentBarbell    Equipment = "barbell"
	EquipmentMachine    Equipment = "machine"
	EquipmentCable      Equipment = "cable"
	EquipmentKettlebell Equipment = "kettlebell"
	EquipmentBands      Equipment = "resistance_bands"
)

// EquipmentKinds lists every value in display order, "all" first.
var EquipmentKinds = []Equipment{
	EquipmentAll,
	EquipmentBodyweight,
	EquipmentDumbbell,
	EquipmentBarbell,
	EquipmentMachine,
	EquipmentCable,
	EquipmentKettlebell,
	EquipmentBands,
}

var equipmentLabels = map[Equipment]string{
	EquipmentAll:        "All",
	EquipmentBodyweight: "Bodyweight",
	EquipmentDumbbell:   "Dumbbell",
	EquipmentBarbell:    "Barbell",
	EquipmentMachine:    "Machine",
	EquipmentCable:      "Cable",
	EquipmentKettlebell: "Kettlebell",
	EquipmentBands:      "Resistance Bands",
}

// equipmentKeywords is checked in order; the first keyword contained in the
// lowercased text wins.
var equipmentKeywords = []struct {
	keyword string
	kind    Equipment
}{
	{"dumbbell", EquipmentDumbbell},
	{"barbell", EquipmentBarbell},
	{"machine", EquipmentMachine},
	{"cable", EquipmentCable},
	{"kettlebell", EquipmentKettlebell},
	{"band", EquipmentBands},
}

// MatchEquipment classifies free-text equipment. It never fails: empty or
// unrecognised text is bodyweight.
func MatchEquipment(s string) Equipment {
	lower := strings.ToLower(s)
	for _, kw := range equipmentKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.kind
		}
	}
	return EquipmentBodyweight
}

// Label returns the display name, e.g. "Resistance Bands".
func (e Equipment) Label() string {
	if l, ok := equipmentLabels[e]; ok {
		return l
	}
	return string(e)
}

// ParseEquipment accepts a slug or label in any case. An empty string
// parses as EquipmentAll; "bands" is accepted for resistance bands.
func ParseEquipment(s string) (Equipment, error) {
	key := normalizeEnumKey(s)
	switch key {
	case "":
		return EquipmentAll, nil
	case "bands", "band":
		return EquipmentBands, nil
	}
	for _, e := range EquipmentKinds {
		if string(e) == key {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown equipment %q", s)
}
