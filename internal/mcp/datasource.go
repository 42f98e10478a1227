package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/claude/odos/internal/catalog"
	"github.com/claude/odos/internal/models"
	"github.com/claude/odos/internal/plan"
	"github.com/claude/odos/internal/storage"
)

// DataSource abstracts where MCP tools read from. Local serves in-process
// components; HTTPClient calls a running odos server.
type DataSource interface {
	SearchExercises(ctx context.Context, sel catalog.Selection) ([]models.ExerciseDefinition, error)
	GetExercise(ctx context.Context, id string) (models.ExerciseDefinition, error)
	ListPlans(ctx context.Context) ([]plan.Summary, error)
	ResolvePlan(ctx context.Context, name string) (plan.Resolution, error)
	ListWorkouts(ctx context.Context, limit int) ([]models.WorkoutRecord, error)
	QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.WorkoutRecord, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.WorkoutRecord, error)
	LastPerformance(ctx context.Context, name string) (*models.WorkoutExercise, error)
}

var (
	_ DataSource = (*Local)(nil)
	_ DataSource = (*HTTPClient)(nil)
)

// Local is a DataSource backed by in-process components.
type Local struct {
	Catalog *catalog.Store
	Planner *plan.Planner
	History *storage.DB
}

func (l *Local) SearchExercises(_ context.Context, sel catalog.Selection) ([]models.ExerciseDefinition, error) {
	return l.Catalog.Filter(sel), nil
}

func (l *Local) GetExercise(_ context.Context, id string) (models.ExerciseDefinition, error) {
	return l.Catalog.Get(id)
}

func (l *Local) ListPlans(context.Context) ([]plan.Summary, error) {
	return l.Planner.Plans(), nil
}

func (l *Local) ResolvePlan(ctx context.Context, name string) (plan.Resolution, error) {
	res, _ := l.Planner.Resolve(ctx, name)
	return res, nil
}

func (l *Local) ListWorkouts(ctx context.Context, limit int) ([]models.WorkoutRecord, error) {
	return l.History.ListWorkouts(ctx, limit)
}

func (l *Local) QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.WorkoutRecord, error) {
	return l.History.QueryWorkouts(ctx, start, end)
}

func (l *Local) GetWorkout(ctx context.Context, id uuid.UUID) (*models.WorkoutRecord, error) {
	return l.History.GetWorkout(ctx, id)
}

func (l *Local) LastPerformance(ctx context.Context, name string) (*models.WorkoutExercise, error) {
	return l.History.LastPerformance(ctx, name)
}
