package plan

import (
	"context"
	"sync"
)

// GenerationResult summarises one generation run. Dropped lists the
// recommended names that matched nothing in the catalog.
type GenerationResult struct {
	Plan     string   `json:"plan"`
	Received int      `json:"received"`
	Matched  int      `json:"matched"`
	Dropped  []string `json:"dropped,omitempty"`
	Cached   bool     `json:"cached"`
}

// Generation is an in-flight or finished plan generation. All callers that
// trigger generation for the same plan while it runs share one Generation.
type Generation struct {
	plan string
	done chan struct{}
	once sync.Once

	result GenerationResult
	err    error
}

func newGeneration(plan string) *Generation {
	return &Generation{plan: plan, done: make(chan struct{})}
}

// Plan returns the plan name being generated.
func (g *Generation) Plan() string { return g.plan }

// Done is closed when the generation finishes.
func (g *Generation) Done() <-chan struct{} { return g.done }

// Wait blocks until the generation finishes or ctx is done. A ctx error
// does not stop the generation itself.
func (g *Generation) Wait(ctx context.Context) (GenerationResult, error) {
	select {
	case <-g.done:
		return g.result, g.err
	case <-ctx.Done():
		return GenerationResult{Plan: g.plan}, ctx.Err()
	}
}

func (g *Generation) finish(res GenerationResult, err error) {
	g.once.Do(func() {
		g.result = res
		g.err = err
		close(g.done)
	})
}
