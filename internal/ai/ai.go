// Package ai turns run reports into short natural-language summaries via a
// text-generation collaborator. The collaborator is strictly optional: every
// path falls back to a local template, so a missing key or a dead endpoint
// never degrades the run itself.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

// RunDigest is the input to summary generation: the counts and highlights
// of one optimization run.
type RunDigest struct {
	EventsScanned int
	Generated     int
	AutoApplied   int
	Queued        int
	Workload      model.WorkloadAnalysis
	Top           []suggest.Suggestion
}

// Generator produces a summary for a run digest.
type Generator interface {
	Summarize(ctx context.Context, d RunDigest) (string, error)
}

// Summarize returns the generator's summary, or the local template when the
// generator is absent or fails. This is the only entry point callers use;
// the fallback is not optional.
func Summarize(ctx context.Context, g Generator, d RunDigest) string {
	if g == nil {
		return Template(d)
	}
	s, err := g.Summarize(ctx, d)
	if err != nil || strings.TrimSpace(s) == "" {
		if err != nil {
			slog.Warn("summary generation failed, using template", "err", err)
		}
		return Template(d)
	}
	return strings.TrimSpace(s)
}

// Template renders the deterministic local summary.
func Template(d RunDigest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scanned %d events and generated %d suggestions", d.EventsScanned, d.Generated)
	if d.AutoApplied > 0 {
		fmt.Fprintf(&sb, ", %d applied automatically", d.AutoApplied)
	}
	if d.Queued > 0 {
		fmt.Fprintf(&sb, ", %d awaiting review", d.Queued)
	}
	sb.WriteString(".")

	if d.Workload.BurnoutRisk >= 8 {
		fmt.Fprintf(&sb, " Burnout risk is critical (%.1f/10); consider declining new meetings this week.", d.Workload.BurnoutRisk)
	} else if d.Workload.BurnoutRisk >= 6 {
		fmt.Fprintf(&sb, " Burnout risk is elevated (%.1f/10).", d.Workload.BurnoutRisk)
	}

	if len(d.Top) > 0 {
		fmt.Fprintf(&sb, " Top suggestion: %s.", strings.TrimSuffix(d.Top[0].Title, "."))
	}
	return sb.String()
}
