package detect

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/timewise/internal/suggest"
)

// namedDetector pairs a detector with its stable name for logging and
// ordering.
type namedDetector struct {
	name string
	fn   Detector
}

// Engine fans the snapshot out to all registered detectors in parallel and
// concatenates their results in registration order, so output order is
// deterministic regardless of completion order.
type Engine struct {
	detectors []namedDetector
}

// NewEngine creates an engine with all five built-in detectors registered.
func NewEngine() *Engine {
	return &Engine{detectors: []namedDetector{
		{"energy", EnergyAlignment},
		{"buffer", Buffer},
		{"focus", FocusTime},
		{"burnout", Burnout},
		{"travel", Travel},
	}}
}

// NewTravelEngine creates the reduced engine the continuous monitor runs:
// travel plus burnout only.
func NewTravelEngine() *Engine {
	return &Engine{detectors: []namedDetector{
		{"travel", Travel},
		{"burnout", Burnout},
	}}
}

// Run executes every detector against the snapshot. Each detector writes
// only its own result slot, so no locking is needed. A detector that
// panics or observes a cancelled context contributes nothing; one bad
// detector never blocks the others.
func (e *Engine) Run(ctx context.Context, in Input) []suggest.Suggestion {
	results := make([][]suggest.Suggestion, len(e.detectors))

	g, ctx := errgroup.WithContext(ctx)
	for i, d := range e.detectors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}
			results[i] = runSafely(d, in)
			return nil
		})
	}
	_ = g.Wait()

	var all []suggest.Suggestion
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}

// runSafely isolates detector panics: the failure is logged and surfaces
// only as an empty suggestion list.
func runSafely(d namedDetector, in Input) (out []suggest.Suggestion) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("detector failed", "detector", d.name, "err", fmt.Sprint(r))
			out = nil
		}
	}()
	return d.fn(in)
}
