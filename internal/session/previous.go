package session

import (
	"context"

	"github.com/claude/odos/internal/models"
)

// annotate fills the Previous field of ex.Sets[from:] from the exercise's
// last recorded performance, matching sets by index. A set past the end of
// the recorded list repeats the annotation of the set before it. Lookup
// failures are logged and leave the sets unannotated.
func (t *Tracker) annotate(ctx context.Context, ex *models.WorkoutExercise, from int) {
	if t.previous == nil || from >= len(ex.Sets) {
		return
	}

	last, err := t.previous.LastPerformance(ctx, ex.Name)
	if err != nil {
		t.log.Warn("looking up previous performance", "exercise", ex.Name, "error", err)
		return
	}
	if last == nil || len(last.Sets) == 0 {
		return
	}

	for j := from; j < len(ex.Sets); j++ {
		if ex.Sets[j].Previous != "" {
			continue
		}
		switch {
		case j < len(last.Sets):
			ex.Sets[j].Previous = last.Sets[j].Summary()
		case j > 0:
			ex.Sets[j].Previous = ex.Sets[j-1].Previous
		}
	}
}
