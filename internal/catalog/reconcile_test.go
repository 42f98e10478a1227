package catalog

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/claude/odos/internal/models"
)

func TestReconcile(t *testing.T) {
	defs := []models.ExerciseDefinition{
		{ID: "a", Name: "Incline Bench Press"},
		{ID: "b", Name: "Bench Press"},
		{ID: "c", Name: "Pullups"},
		{ID: "d", Name: "Cable Face Pull"},
	}

	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{"exact wins over earlier substring", "bench press", "b", true},
		{"catalog name contains input", "Incline Bench", "a", true},
		{"input contains catalog name", "Weighted Pullups", "c", true},
		{"substring picks first in catalog order", "Press", "a", true},
		{"face pulls has no match", "Face Pulls", "", false},
		{"empty never matches", "", "", false},
		{"whitespace never matches", "   ", "", false},
		{"unknown", "Nordic Curl", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Reconcile(defs, tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestReconcile_EmptyCatalog(t *testing.T) {
	f := gofakeit.New(1)
	for range 20 {
		_, ok := Reconcile(nil, f.Name())
		assert.False(t, ok)
	}
}

func TestReconcile_ExactAlwaysWins(t *testing.T) {
	f := gofakeit.New(3)
	for range 30 {
		defs := fakeCatalog(f, f.IntRange(1, 30))
		target := defs[f.IntRange(0, len(defs)-1)]
		// a superstring placed first must not shadow the exact match
		defs = append([]models.ExerciseDefinition{{ID: "shadow", Name: "Super " + target.Name}}, defs...)

		got, ok := Reconcile(defs, target.Name)
		assert.True(t, ok)
		assert.Equal(t, target.Name, got.Name)
		assert.NotEqual(t, "shadow", got.ID)
	}
}

func TestFindByName(t *testing.T) {
	defs := []models.ExerciseDefinition{{ID: "a", Name: "Incline Bench Press"}, {ID: "b", Name: "Squats"}}

	got, ok := FindByName(defs, "squats")
	assert.True(t, ok)
	assert.Equal(t, "b", got.ID)

	_, ok = FindByName(defs, "Bench Press")
	assert.False(t, ok, "substring must not resolve a default plan name")
}
