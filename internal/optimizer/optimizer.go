// Package optimizer orchestrates one optimization pass: load the schedule,
// fan out to the detectors, rank and gate the results, then apply what
// qualifies and queue the rest.
package optimizer

import (
	"context"
	"log/slog"
	"time"

	"github.com/blackwell-systems/timewise/internal/ai"
	"github.com/blackwell-systems/timewise/internal/apply"
	"github.com/blackwell-systems/timewise/internal/calendar"
	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/detect"
	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/schedule"
	"github.com/blackwell-systems/timewise/internal/store"
	"github.com/blackwell-systems/timewise/internal/suggest"
	"github.com/blackwell-systems/timewise/internal/travel"
)

// Report is the outcome of one optimization pass.
type Report struct {
	RunID         int64                  `json:"run_id"`
	EventsScanned int                    `json:"events_scanned"`
	Workload      model.WorkloadAnalysis `json:"workload"`
	Suggestions   []suggest.Suggestion   `json:"suggestions"` // ranked, gate applied
	AutoApplied   []suggest.Suggestion   `json:"auto_applied"`
	Queued        []suggest.Suggestion   `json:"queued"`
	Summary       string                 `json:"summary"`
}

// Optimizer holds the collaborators one pass needs. Build it once at
// startup; RunFull derives all per-run state fresh so repeated runs over an
// unchanged calendar are idempotent.
type Optimizer struct {
	cfg     *config.Config
	db      *store.DB
	cal     calendar.Collaborator
	applier *apply.Engine
	engine  *detect.Engine
	collect *travel.Collector
	gen     ai.Generator
	now     func() time.Time
}

// New creates an optimizer. collector and gen may be nil when the
// corresponding collaborators are not configured.
func New(cfg *config.Config, db *store.DB, cal calendar.Collaborator, engine *detect.Engine, collector *travel.Collector, gen ai.Generator) *Optimizer {
	return &Optimizer{
		cfg:     cfg,
		db:      db,
		cal:     cal,
		applier: apply.New(db, cal, cfg.CalendarID),
		engine:  engine,
		collect: collector,
		gen:     gen,
		now:     time.Now,
	}
}

// RunFull executes one complete optimization pass and records it in the run
// history. An unreachable calendar degrades to an empty event range; the
// pass itself still completes with zero suggestions.
func (o *Optimizer) RunFull(ctx context.Context, trigger string) (*Report, error) {
	runID, err := o.db.CreateRun(trigger)
	if err != nil {
		return nil, err
	}

	now := o.now()
	rangeEnd := now.AddDate(0, 0, o.lookaheadDays())

	events, err := schedule.LoadEvents(ctx, o.cal, o.cfg.CalendarID, now, rangeEnd)
	if err != nil {
		slog.Warn("loading events", "err", err)
		events = nil
	}

	prefs := schedule.LoadPreferences(o.cfg)
	workload := schedule.ComputeWorkload(events, prefs, now, nil)

	var sig model.TravelSignal
	if o.collect != nil {
		sig = o.collect.Collect(ctx, o.cfg.Monitor.FlightNumber, o.cfg.Monitor.CommuteRoute)
	}

	raw := o.engine.Run(ctx, detect.Input{
		Events:     events,
		Prefs:      prefs,
		Workload:   workload,
		Travel:     sig,
		Thresholds: o.cfg.Thresholds,
		Now:        now,
	})

	ranked := suggest.Rank(raw)
	gated := suggest.ApplyGate(ranked, prefs, workload.BurnoutRisk, o.cfg.Thresholds)

	report := &Report{
		RunID:         runID,
		EventsScanned: len(events),
		Workload:      workload,
		Suggestions:   gated,
	}

	// Ranked order serializes same-event mutations: the strongest suggestion
	// for an event lands first and weaker ones queue behind it.
	for _, s := range gated {
		if s.AutoApprove {
			if err := o.applier.ApplyDirect(ctx, s); err != nil {
				slog.Warn("auto-apply failed, queueing instead", "id", s.ID, "err", err)
				o.enqueue(runID, s, report)
				continue
			}
			report.AutoApplied = append(report.AutoApplied, s)
			continue
		}
		o.enqueue(runID, s, report)
	}

	if err := o.db.RecordGenerated(len(gated)); err != nil {
		slog.Warn("recording generated count", "err", err)
	}
	if err := o.db.FinishRun(runID, len(events), len(gated), len(report.AutoApplied), len(report.Queued)); err != nil {
		slog.Warn("finishing run record", "err", err)
	}

	report.Summary = ai.Summarize(ctx, o.gen, ai.RunDigest{
		EventsScanned: report.EventsScanned,
		Generated:     len(gated),
		AutoApplied:   len(report.AutoApplied),
		Queued:        len(report.Queued),
		Workload:      workload,
		Top:           gated,
	})

	return report, nil
}

func (o *Optimizer) enqueue(runID int64, s suggest.Suggestion, report *Report) {
	if dup, err := o.db.PendingLike(string(s.Type), s.EventID, s.Title); err == nil && dup {
		slog.Debug("equivalent suggestion already pending", "type", s.Type, "event", s.EventID)
		return
	}
	if err := o.db.Enqueue(runID, s); err != nil {
		slog.Warn("enqueue failed", "id", s.ID, "err", err)
		return
	}
	report.Queued = append(report.Queued, s)
}

// Applier exposes the application engine for the approve/reject commands.
func (o *Optimizer) Applier() *apply.Engine {
	return o.applier
}

func (o *Optimizer) lookaheadDays() int {
	if o.cfg.Monitor.LookaheadDays > 0 {
		return o.cfg.Monitor.LookaheadDays
	}
	return config.DefaultLookaheadDays
}
