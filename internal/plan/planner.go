// Package plan resolves named workout plans. A plan resolves to its cached
// generated exercise list when one exists, and otherwise to its default
// exercise names looked up in the catalog, while a generation task is
// started for next time.
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/claude/odos/internal/catalog"
	"github.com/claude/odos/internal/metrics"
	"github.com/claude/odos/internal/models"
	"github.com/claude/odos/internal/recommend"
)

// ErrClosed is returned by generations requested after Close.
var ErrClosed = errors.New("planner closed")

// Source says where a resolved exercise list came from.
type Source string

const (
	SourceDefault   Source = "default"
	SourceGenerated Source = "generated"
)

// Resolution is a plan ready to start a session with. Exercises carry fresh
// ids on every call. Skipped lists default names absent from the catalog.
type Resolution struct {
	Plan      string                   `json:"plan"`
	Source    Source                   `json:"source"`
	Exercises []models.WorkoutExercise `json:"exercises"`
	Skipped   []string                 `json:"skipped,omitempty"`
}

// Catalog is the read side of the exercise catalog.
type Catalog interface {
	All() []models.ExerciseDefinition
}

// Config holds the plan definitions and the fixed generation request fields.
type Config struct {
	Plans           []Definition
	Equipment       []string
	ExperienceLevel string
	DurationMinutes int
}

// Summary describes a plan for listings.
type Summary struct {
	Name       string   `json:"name"`
	Exercises  []string `json:"exercises"`
	Generated  bool     `json:"generated"`
	Generating bool     `json:"generating"`
}

// Planner resolves plans and runs generation tasks. Generations run on the
// planner's own context, so they outlive the request that started them and
// stop on Close.
type Planner struct {
	catalog Catalog
	rec     recommend.Recommender
	cfg     Config
	log     *slog.Logger
	metrics *metrics.Manager

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	cache    map[string][]models.WorkoutExercise
	inflight map[string]*Generation
	closed   bool
}

// New creates a Planner. Empty config fields take the built-in defaults.
func New(cat Catalog, rec recommend.Recommender, cfg Config, logger *slog.Logger, m *metrics.Manager) *Planner {
	if cfg.Plans == nil {
		cfg.Plans = DefaultDefinitions()
	}
	if cfg.Equipment == nil {
		cfg.Equipment = DefaultEquipment()
	}
	if cfg.ExperienceLevel == "" {
		cfg.ExperienceLevel = DefaultExperienceLevel
	}
	if cfg.DurationMinutes <= 0 {
		cfg.DurationMinutes = DefaultDurationMinutes
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Planner{
		catalog:  cat,
		rec:      rec,
		cfg:      cfg,
		log:      logger,
		metrics:  m,
		ctx:      ctx,
		cancel:   cancel,
		cache:    map[string][]models.WorkoutExercise{},
		inflight: map[string]*Generation{},
	}
}

// Plans lists the configured plans in order.
func (p *Planner) Plans() []Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Summary, 0, len(p.cfg.Plans))
	for _, d := range p.cfg.Plans {
		_, generated := p.cache[d.Name]
		_, generating := p.inflight[d.Name]
		out = append(out, Summary{
			Name:       d.Name,
			Exercises:  append([]string(nil), d.Exercises...),
			Generated:  generated,
			Generating: generating,
		})
	}
	return out
}

// canonical maps name onto a configured plan name ignoring case, or
// returns it trimmed.
func (p *Planner) canonical(name string) string {
	name = strings.TrimSpace(name)
	for _, d := range p.cfg.Plans {
		if strings.EqualFold(d.Name, name) {
			return d.Name
		}
	}
	return name
}

func (p *Planner) definition(name string) (Definition, bool) {
	for _, d := range p.cfg.Plans {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Resolve returns the plan's exercises. A cached generated list is returned
// as a fresh copy with no task. Otherwise the default list is returned and
// a generation for the plan is started or joined; the task is returned so
// the caller can wait on it. Unknown plans resolve to an empty default list
// but still trigger generation. A blank name resolves to nothing.
func (p *Planner) Resolve(ctx context.Context, name string) (Resolution, *Generation) {
	name = p.canonical(name)
	if name == "" {
		return Resolution{Source: SourceDefault, Exercises: []models.WorkoutExercise{}}, nil
	}

	p.mu.Lock()
	cached, ok := p.cache[name]
	p.mu.Unlock()
	if ok {
		out := make([]models.WorkoutExercise, len(cached))
		for i, e := range cached {
			out[i] = e.Renew()
		}
		return Resolution{Plan: name, Source: SourceGenerated, Exercises: out}, nil
	}

	res := p.resolveDefault(name)
	return res, p.Generate(name)
}

func (p *Planner) resolveDefault(name string) Resolution {
	res := Resolution{Plan: name, Source: SourceDefault, Exercises: []models.WorkoutExercise{}}
	def, ok := p.definition(name)
	if !ok {
		return res
	}

	defs := p.catalog.All()
	for _, exName := range def.Exercises {
		d, ok := catalog.FindByName(defs, exName)
		if !ok {
			res.Skipped = append(res.Skipped, exName)
			continue
		}
		ex := models.NewWorkoutExercise(d)
		ex.Sets = append(ex.Sets, models.NewSet())
		res.Exercises = append(res.Exercises, ex)
	}

	if len(res.Skipped) > 0 {
		p.metrics.CounterReconcileDrops.WithLabelValues(metrics.DropSourceDefaultPlan).Add(float64(len(res.Skipped)))
		p.log.Info("default plan exercises not in catalog", "plan", name,
			"skipped", len(res.Skipped), "names", res.Skipped)
	}
	return res
}

// Generate starts a generation for the plan, or returns the one already
// running for it.
func (p *Planner) Generate(name string) *Generation {
	name = p.canonical(name)

	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.inflight[name]; ok {
		return g
	}

	g := newGeneration(name)
	if p.closed {
		g.finish(GenerationResult{Plan: name}, ErrClosed)
		return g
	}
	if name == "" {
		g.finish(GenerationResult{}, fmt.Errorf("generating plan: empty plan name"))
		return g
	}

	p.inflight[name] = g
	p.wg.Add(1)
	go p.run(g)
	return g
}

func (p *Planner) run(g *Generation) {
	defer p.wg.Done()

	exercises, res, err := p.generate(p.ctx, g.plan)

	p.mu.Lock()
	if err == nil && len(exercises) > 0 {
		p.cache[g.plan] = exercises
		res.Cached = true
	}
	delete(p.inflight, g.plan)
	p.mu.Unlock()

	g.finish(res, err)
}

// generate asks the recommender for the plan and reconciles every
// recommendation against the catalog. Unmatched names are dropped.
func (p *Planner) generate(ctx context.Context, name string) ([]models.WorkoutExercise, GenerationResult, error) {
	res := GenerationResult{Plan: name}
	req := models.WorkoutRequest{
		Type:            name,
		Equipment:       append([]string(nil), p.cfg.Equipment...),
		ExperienceLevel: p.cfg.ExperienceLevel,
		DurationMinutes: p.cfg.DurationMinutes,
	}

	recs, err := p.rec.Recommend(ctx, req)
	if err != nil {
		p.log.Warn("plan generation failed, keeping defaults", "plan", name, "error", err)
		return nil, res, fmt.Errorf("generating plan %q: %w", name, err)
	}
	res.Received = len(recs)

	defs := p.catalog.All()
	exercises := make([]models.WorkoutExercise, 0, len(recs))
	for _, r := range recs {
		d, ok := catalog.Reconcile(defs, r.Name)
		if !ok {
			res.Dropped = append(res.Dropped, r.Name)
			continue
		}
		ex := models.NewWorkoutExercise(d)
		for range max(r.Sets, 1) {
			ex.Sets = append(ex.Sets, models.NewSet())
		}
		ex.RecommendedReps = r.RepsRange
		ex.Notes = r.Notes
		exercises = append(exercises, ex)
	}
	res.Matched = len(exercises)

	if len(res.Dropped) > 0 {
		p.metrics.CounterReconcileDrops.WithLabelValues(metrics.DropSourceRecommendation).Add(float64(len(res.Dropped)))
		p.log.Info("recommendations not in catalog", "plan", name,
			"dropped", len(res.Dropped), "names", res.Dropped)
	}
	p.log.Info("plan generated", "plan", name, "received", res.Received, "matched", res.Matched)
	return exercises, res, nil
}

// Generated returns a copy of the cached generated list for a plan.
func (p *Planner) Generated(name string) ([]models.WorkoutExercise, bool) {
	name = p.canonical(name)
	p.mu.Lock()
	defer p.mu.Unlock()
	cached, ok := p.cache[name]
	if !ok {
		return nil, false
	}
	return models.CloneExercises(cached), true
}

// Close cancels running generations and waits for them to exit.
func (p *Planner) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
