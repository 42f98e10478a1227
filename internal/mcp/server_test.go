package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/odos/internal/catalog"
	"github.com/claude/odos/internal/metrics"
	"github.com/claude/odos/internal/models"
	"github.com/claude/odos/internal/plan"
	"github.com/claude/odos/internal/storage"
)

type offlineRecommender struct{}

func (offlineRecommender) Recommend(context.Context, models.WorkoutRequest) ([]models.ExerciseRecommendation, error) {
	return nil, errors.New("offline")
}

func newLocal(t *testing.T) (*handlers, *storage.DB) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewTestManager()

	db, err := storage.New(context.Background())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dumbbell := "dumbbell"
	cat := catalog.NewStore(nil, log, m)
	cat.Replace([]models.ExerciseDefinition{
		{ID: "Dumbbell_Bench_Press", Name: "Dumbbell Bench Press", Equipment: &dumbbell, PrimaryMuscles: []string{"chest"}},
		{ID: "Pullups", Name: "Pullups", PrimaryMuscles: []string{"lats"}},
		{ID: "Dumbbell_Row", Name: "Dumbbell Row", Equipment: &dumbbell, PrimaryMuscles: []string{"lats"}},
	})

	planner := plan.New(cat, offlineRecommender{}, plan.Config{
		Plans: []plan.Definition{{Name: "Pull", Exercises: []string{"Pullups", "Face Pull"}}},
	}, log, m)
	t.Cleanup(planner.Close)

	return &handlers{ds: &Local{Catalog: cat, Planner: planner, History: db}, log: log}, db
}

func callTool(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("tool returned error: %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func decodeResult[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var v T
	if err := json.Unmarshal([]byte(resultText(t, res)), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// TestHistoryRange verifies the range is only set when a bound is given,
// and that a lone end defaults the start to 7 days earlier.
func TestHistoryRange(t *testing.T) {
	if _, _, ok, err := historyRange("", ""); ok || err != nil {
		t.Errorf("empty range: ok=%v err=%v, want false nil", ok, err)
	}

	start, end, ok, err := historyRange("", "2024-01-31")
	if err != nil || !ok {
		t.Fatalf("end only: ok=%v err=%v", ok, err)
	}
	if want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("date-only end = %v, want end of day %v", end, want)
	}
	if got := end.Sub(start); got != 7*24*time.Hour {
		t.Errorf("range = %v, want 168h", got)
	}

	_, end, _, err = historyRange("", "2024-01-31T12:00:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("RFC 3339 end = %v, want %v", end, want)
	}

	start, _, _, err = historyRange("2024-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	if _, _, _, err := historyRange("not-a-date", ""); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestSearchExercises verifies filters and the result limit.
func TestSearchExercises(t *testing.T) {
	h, _ := newLocal(t)

	defs := decodeResult[[]models.ExerciseDefinition](t, callTool(t, h.searchExercises, map[string]any{
		"muscle":    "upper back",
		"equipment": "dumbbell",
	}))
	if len(defs) != 1 || defs[0].ID != "Dumbbell_Row" {
		t.Errorf("results = %+v, want only Dumbbell_Row", defs)
	}

	defs = decodeResult[[]models.ExerciseDefinition](t, callTool(t, h.searchExercises, map[string]any{"limit": 2}))
	if len(defs) != 2 {
		t.Errorf("limited results = %d, want 2", len(defs))
	}

	if res := callTool(t, h.searchExercises, map[string]any{"equipment": "sled"}); !res.IsError {
		t.Error("unknown equipment should be a tool error")
	}
}

// TestGetExercise verifies lookups by id and the missing-argument error.
func TestGetExercise(t *testing.T) {
	h, _ := newLocal(t)

	def := decodeResult[models.ExerciseDefinition](t, callTool(t, h.getExercise, map[string]any{"id": "Pullups"}))
	if def.Name != "Pullups" {
		t.Errorf("name = %q, want Pullups", def.Name)
	}
	if res := callTool(t, h.getExercise, map[string]any{"id": "Nope"}); !res.IsError {
		t.Error("unknown id should be a tool error")
	}
	if res := callTool(t, h.getExercise, nil); !res.IsError {
		t.Error("missing id should be a tool error")
	}
}

// TestResolvePlan verifies defaults absent from the catalog are skipped.
func TestResolvePlan(t *testing.T) {
	h, _ := newLocal(t)

	res := decodeResult[plan.Resolution](t, callTool(t, h.resolvePlan, map[string]any{"name": "pull"}))
	if res.Plan != "Pull" || res.Source != plan.SourceDefault {
		t.Errorf("resolution = %s/%s, want Pull/default", res.Plan, res.Source)
	}
	if len(res.Exercises) != 1 || res.Exercises[0].Name != "Pullups" {
		t.Errorf("exercises = %+v, want only Pullups", res.Exercises)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "Face Pull" {
		t.Errorf("skipped = %v, want [Face Pull]", res.Skipped)
	}

	plans := decodeResult[[]plan.Summary](t, callTool(t, h.listPlans, nil))
	if len(plans) != 1 || plans[0].Name != "Pull" {
		t.Errorf("plans = %+v", plans)
	}
}

// TestWorkoutHistoryAndLastPerformance verifies history tools read what
// storage recorded.
func TestWorkoutHistoryAndLastPerformance(t *testing.T) {
	h, db := newLocal(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Hour).UTC()
	rec := models.WorkoutRecord{
		ID:          uuid.New(),
		Name:        "Pull Day",
		StartedAt:   started,
		CompletedAt: started.Add(45 * time.Minute),
		Duration:    45 * time.Minute,
		Exercises: []models.WorkoutExercise{{
			ID:   uuid.New(),
			Name: "Pullups",
			Sets: []models.Set{{ID: uuid.New(), Reps: 8, Completed: true}},
		}},
	}
	if err := db.InsertWorkout(ctx, rec); err != nil {
		t.Fatalf("InsertWorkout: %v", err)
	}

	records := decodeResult[[]models.WorkoutRecord](t, callTool(t, h.getWorkoutHistory, nil))
	if len(records) != 1 || records[0].ID != rec.ID {
		t.Fatalf("history = %+v, want the inserted workout", records)
	}

	one := decodeResult[models.WorkoutRecord](t, callTool(t, h.getWorkoutHistory, map[string]any{"id": rec.ID.String()}))
	if one.Name != "Pull Day" {
		t.Errorf("name = %q, want Pull Day", one.Name)
	}

	last := decodeResult[models.WorkoutExercise](t, callTool(t, h.getLastPerformance, map[string]any{"exercise": "PULLUPS"}))
	if len(last.Sets) != 1 || last.Sets[0].Reps != 8 {
		t.Errorf("last performance = %+v", last)
	}

	res := callTool(t, h.getLastPerformance, map[string]any{"exercise": "Dumbbell Row"})
	if res.IsError {
		t.Fatalf("no history should not be an error: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "no recorded history for Dumbbell Row" {
		t.Errorf("text = %q", got)
	}
}

// TestRecentWorkoutsResource verifies the resource echoes the request URI.
func TestRecentWorkoutsResource(t *testing.T) {
	h, _ := newLocal(t)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "odos://recent_workouts"
	contents, err := h.recentWorkouts(context.Background(), req)
	if err != nil {
		t.Fatalf("recentWorkouts: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content type = %T", contents[0])
	}
	if tc.URI != "odos://recent_workouts" || tc.MIMEType != "application/json" {
		t.Errorf("contents = %+v", tc)
	}
}
