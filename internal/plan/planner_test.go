package plan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/claude/odos/internal/metrics"
	"github.com/claude/odos/internal/models"
	"github.com/claude/odos/internal/recommend"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticCatalog []models.ExerciseDefinition

func (c staticCatalog) All() []models.ExerciseDefinition { return c }

// fakeRecommender blocks each call until release is closed, unless it is nil.
type fakeRecommender struct {
	recs    []models.ExerciseRecommendation
	err     error
	release chan struct{}

	mu    sync.Mutex
	calls int
	reqs  []models.WorkoutRequest
}

func (f *fakeRecommender) Recommend(ctx context.Context, req models.WorkoutRequest) ([]models.ExerciseRecommendation, error) {
	f.mu.Lock()
	f.calls++
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.recs, f.err
}

func (f *fakeRecommender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testCatalog = staticCatalog{
	{ID: "bp", Name: "Bench Press", PrimaryMuscles: []string{"chest"}},
	{ID: "ibp", Name: "Incline Bench Press", PrimaryMuscles: []string{"chest"}},
	{ID: "ohp", Name: "Overhead Press", PrimaryMuscles: []string{"shoulders"}},
	{ID: "pu", Name: "Pull-ups", PrimaryMuscles: []string{"lats"}},
	{ID: "row", Name: "Bent Over Barbell Row", PrimaryMuscles: []string{"middle_back"}},
	{ID: "lr", Name: "Lateral Raises", PrimaryMuscles: []string{"shoulders"}},
}

func newPlanner(t *testing.T, rec recommend.Recommender) (*Planner, *metrics.Manager) {
	t.Helper()
	m := metrics.NewTestManager()
	p := New(testCatalog, rec, Config{}, discardLogger(), m)
	t.Cleanup(p.Close)
	return p, m
}

func names(list []models.WorkoutExercise) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Name
	}
	return out
}

func waitDone(t *testing.T, g *Generation) GenerationResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := g.Wait(ctx)
	require.NoError(t, err)
	return res
}

func TestResolve_DefaultThenGenerated(t *testing.T) {
	rec := &fakeRecommender{recs: []models.ExerciseRecommendation{
		{Name: "incline bench press", Sets: 4, RepsRange: "8-10", MuscleGroup: "Chest", Notes: "Control the descent"},
		{Name: "Dumbbell Fly", Sets: 3, RepsRange: "12", MuscleGroup: "Chest"},
		{Name: "Overhead", Sets: 0, RepsRange: "5", MuscleGroup: "Shoulders"},
	}}
	p, m := newPlanner(t, rec)
	ctx := context.Background()

	res, gen := p.Resolve(ctx, "upper body")
	require.NotNil(t, gen)
	assert.Equal(t, SourceDefault, res.Source)
	assert.Equal(t, "Upper Body", res.Plan)
	assert.Equal(t, []string{"Bench Press", "Overhead Press", "Pull-ups", "Lateral Raises"}, names(res.Exercises))
	assert.Equal(t, []string{"Rows"}, res.Skipped)
	for _, e := range res.Exercises {
		require.Len(t, e.Sets, 1)
		assert.Equal(t, 0.0, e.Sets[0].Weight)
	}

	gr := waitDone(t, gen)
	assert.Equal(t, 3, gr.Received)
	assert.Equal(t, 2, gr.Matched)
	assert.Equal(t, []string{"Dumbbell Fly"}, gr.Dropped)
	assert.True(t, gr.Cached)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterReconcileDrops.WithLabelValues(metrics.DropSourceRecommendation)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterReconcileDrops.WithLabelValues(metrics.DropSourceDefaultPlan)))

	res, gen = p.Resolve(ctx, "Upper Body")
	assert.Nil(t, gen)
	assert.Equal(t, SourceGenerated, res.Source)
	require.Equal(t, []string{"Incline Bench Press", "Overhead Press"}, names(res.Exercises))
	assert.Len(t, res.Exercises[0].Sets, 4)
	assert.Equal(t, "8-10", res.Exercises[0].RecommendedReps)
	assert.Equal(t, "Control the descent", res.Exercises[0].Notes)
	assert.Len(t, res.Exercises[1].Sets, 1, "zero recommended sets still gets one set")

	assert.Equal(t, 1, rec.callCount())
	req := rec.reqs[0]
	assert.Equal(t, "Upper Body", req.Type)
	assert.Equal(t, DefaultEquipment(), req.Equipment)
	assert.Equal(t, "Intermediate", req.ExperienceLevel)
	assert.Equal(t, 60, req.DurationMinutes)
}

func TestResolve_GeneratedCopiesAreIndependent(t *testing.T) {
	rec := &fakeRecommender{recs: []models.ExerciseRecommendation{{Name: "Bench Press", Sets: 2}}}
	p, _ := newPlanner(t, rec)
	ctx := context.Background()

	_, gen := p.Resolve(ctx, "Push")
	waitDone(t, gen)

	a, _ := p.Resolve(ctx, "Push")
	b, _ := p.Resolve(ctx, "Push")
	assert.NotEqual(t, a.Exercises[0].ID, b.Exercises[0].ID)
	assert.NotEqual(t, a.Exercises[0].Sets[0].ID, b.Exercises[0].Sets[0].ID)

	a.Exercises[0].Sets[0].Weight = 80
	c, _ := p.Resolve(ctx, "Push")
	assert.Equal(t, 0.0, c.Exercises[0].Sets[0].Weight)
}

func TestResolve_IdempotentWhileGenerating(t *testing.T) {
	rec := &fakeRecommender{release: make(chan struct{}), recs: []models.ExerciseRecommendation{{Name: "Rows", Sets: 3}}}
	p, _ := newPlanner(t, rec)
	ctx := context.Background()

	first, g1 := p.Resolve(ctx, "Pull")
	second, g2 := p.Resolve(ctx, "Pull")

	assert.Equal(t, names(first.Exercises), names(second.Exercises))
	assert.Equal(t, SourceDefault, second.Source)
	assert.Same(t, g1, g2, "second resolve joins the in-flight generation")

	close(rec.release)
	waitDone(t, g1)
	assert.Equal(t, 1, rec.callCount())
}

func TestGenerate_FailureKeepsDefaults(t *testing.T) {
	rec := &fakeRecommender{err: recommend.ErrRecommendationFailed}
	p, _ := newPlanner(t, rec)
	ctx := context.Background()

	_, gen := p.Resolve(ctx, "Push")
	_, err := gen.Wait(ctx)
	require.ErrorIs(t, err, recommend.ErrRecommendationFailed)

	res, gen := p.Resolve(ctx, "Push")
	assert.Equal(t, SourceDefault, res.Source)
	require.NotNil(t, gen, "failed generation leaves the cache unset so resolve retries")
	_, err = gen.Wait(ctx)
	assert.Error(t, err)
	_, ok := p.Generated("Push")
	assert.False(t, ok)
}

func TestGenerate_NoMatchesIsNotCached(t *testing.T) {
	rec := &fakeRecommender{recs: []models.ExerciseRecommendation{{Name: "Nordic Curl", Sets: 3}}}
	p, _ := newPlanner(t, rec)

	res := waitDone(t, p.Generate("Lower Body"))
	assert.Equal(t, 1, res.Received)
	assert.Equal(t, 0, res.Matched)
	assert.False(t, res.Cached)

	_, ok := p.Generated("Lower Body")
	assert.False(t, ok)
}

func TestResolve_UnknownPlan(t *testing.T) {
	rec := &fakeRecommender{recs: []models.ExerciseRecommendation{{Name: "Pull-ups", Sets: 3}}}
	p, _ := newPlanner(t, rec)
	ctx := context.Background()

	res, gen := p.Resolve(ctx, "Full Body")
	assert.Empty(t, res.Exercises)
	require.NotNil(t, gen)
	waitDone(t, gen)

	res, _ = p.Resolve(ctx, "Full Body")
	assert.Equal(t, SourceGenerated, res.Source)
	assert.Equal(t, []string{"Pull-ups"}, names(res.Exercises))
}

func TestResolve_BlankName(t *testing.T) {
	rec := &fakeRecommender{}
	p, _ := newPlanner(t, rec)

	res, gen := p.Resolve(context.Background(), "  ")
	assert.Nil(t, gen)
	assert.Empty(t, res.Exercises)
	assert.Equal(t, 0, rec.callCount())
}

func TestGeneration_OutlivesCallerContext(t *testing.T) {
	rec := &fakeRecommender{release: make(chan struct{}), recs: []models.ExerciseRecommendation{{Name: "Bench Press", Sets: 3}}}
	p, _ := newPlanner(t, rec)

	reqCtx, cancel := context.WithCancel(context.Background())
	_, gen := p.Resolve(reqCtx, "Push")
	cancel()

	_, err := gen.Wait(reqCtx)
	assert.ErrorIs(t, err, context.Canceled)

	close(rec.release)
	res := waitDone(t, gen)
	assert.True(t, res.Cached)
}

func TestClose_CancelsInFlight(t *testing.T) {
	rec := &fakeRecommender{release: make(chan struct{})}
	m := metrics.NewTestManager()
	p := New(testCatalog, rec, Config{}, discardLogger(), m)

	gen := p.Generate("Push")
	require.Eventually(t, func() bool { return rec.callCount() == 1 }, time.Second, 5*time.Millisecond)

	p.Close()
	select {
	case <-gen.Done():
	default:
		t.Fatal("generation still running after Close")
	}
	_, err := gen.Wait(context.Background())
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = p.Generate("Pull").Wait(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPlans(t *testing.T) {
	var calls atomic.Int32
	rec := recommenderFunc(func(context.Context, models.WorkoutRequest) ([]models.ExerciseRecommendation, error) {
		calls.Add(1)
		return []models.ExerciseRecommendation{{Name: "Pull-ups", Sets: 3}}, nil
	})
	cfg := Config{Plans: []Definition{{Name: "Chin Day", Exercises: []string{"Pull-ups"}}}}
	p := New(testCatalog, rec, cfg, discardLogger(), metrics.NewTestManager())
	defer p.Close()

	plans := p.Plans()
	require.Len(t, plans, 1)
	assert.Equal(t, "Chin Day", plans[0].Name)
	assert.False(t, plans[0].Generated)

	waitDone(t, p.Generate("chin day"))
	assert.True(t, p.Plans()[0].Generated)
	assert.Equal(t, int32(1), calls.Load())
}

type recommenderFunc func(context.Context, models.WorkoutRequest) ([]models.ExerciseRecommendation, error)

func (f recommenderFunc) Recommend(ctx context.Context, req models.WorkoutRequest) ([]models.ExerciseRecommendation, error) {
	return f(ctx, req)
}
