// Package monitor runs the continuous background check: travel signals and
// burnout risk are re-derived from scratch on every tick, high-confidence
// travel adjustments are applied automatically, and everything else becomes
// a queued suggestion or a desktop notification.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

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

// Monitor owns the cron loop. Each tick re-derives all state fresh, so a
// tick over an unchanged calendar and unchanged signals produces no new
// actions.
type Monitor struct {
	cfg     *config.Config
	db      *store.DB
	cal     calendar.Collaborator
	applier *apply.Engine
	engine  *detect.Engine
	collect *travel.Collector
	notify  func(Alert)
	now     func() time.Time

	cron *cron.Cron

	// lastAlertKeys suppresses repeats of identical alerts between ticks.
	lastAlertKeys map[string]bool
}

// New creates a monitor. collector may be nil; notifyFn defaults to the
// desktop notification path.
func New(cfg *config.Config, db *store.DB, cal calendar.Collaborator, collector *travel.Collector, notifyFn func(Alert)) *Monitor {
	if notifyFn == nil {
		notifyFn = func(a Alert) {
			if err := Notify(a); err != nil {
				slog.Warn("notification failed", "err", err)
			}
		}
	}
	return &Monitor{
		cfg:           cfg,
		db:            db,
		cal:           cal,
		applier:       apply.New(db, cal, cfg.CalendarID),
		engine:        detect.NewTravelEngine(),
		collect:       collector,
		notify:        notifyFn,
		now:           time.Now,
		lastAlertKeys: make(map[string]bool),
	}
}

// cronLogger adapts the cron logger contract onto slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any)             { slog.Debug(msg, kv...) }
func (cronLogger) Error(err error, msg string, kv ...any) { slog.Warn(msg, append(kv, "err", err)...) }

// Start schedules the check loop and returns immediately. A tick that is
// still running when the next one fires is skipped, never overlapped.
func (m *Monitor) Start() error {
	interval := m.cfg.Monitor.Interval
	if interval == "" {
		interval = config.DefaultMonitorInterval
	}
	if _, err := time.ParseDuration(interval); err != nil {
		return fmt.Errorf("monitor interval %q: %w", interval, err)
	}

	m.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{}),
		cron.Recover(cronLogger{}),
	))
	if _, err := m.cron.AddFunc("@every "+interval, func() {
		m.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("scheduling monitor: %w", err)
	}
	m.cron.Start()
	slog.Info("monitor started", "interval", interval)
	return nil
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (m *Monitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	slog.Info("monitor stopped")
}

// RunOnce performs a single check and returns the alerts it raised. Every
// failure inside a tick degrades or logs; a tick never stops later ticks.
func (m *Monitor) RunOnce(ctx context.Context) []Alert {
	now := m.now()
	runID, err := m.db.CreateRun(store.TriggerMonitor)
	if err != nil {
		slog.Warn("recording monitor run", "err", err)
	}

	var raw []Alert

	events, err := schedule.LoadEvents(ctx, m.cal, m.cfg.CalendarID, now, now.AddDate(0, 0, m.lookaheadDays()))
	if err != nil {
		raw = append(raw, Alert{
			Level:   "warning",
			Title:   "Calendar unreachable",
			Message: "Could not load events; skipping this check.",
			Time:    now,
		})
		return m.emit(raw)
	}

	prefs := schedule.LoadPreferences(m.cfg)
	workload := schedule.ComputeWorkload(events, prefs, now, nil)

	var sig model.TravelSignal
	if m.collect != nil {
		sig = m.collect.Collect(ctx, m.cfg.Monitor.FlightNumber, m.cfg.Monitor.CommuteRoute)
	}

	ranked := suggest.Rank(m.engine.Run(ctx, detect.Input{
		Events:     events,
		Prefs:      prefs,
		Workload:   workload,
		Travel:     sig,
		Thresholds: m.cfg.Thresholds,
		Now:        now,
	}))
	gated := suggest.ApplyGate(ranked, prefs, workload.BurnoutRisk, m.cfg.Thresholds)

	applied, queued := 0, 0
	for _, s := range gated {
		switch {
		case s.Source == "travel" && s.AutoApprove && s.Confidence >= m.cfg.Thresholds.MonitorApplyConfidence:
			if err := m.applier.ApplyDirect(ctx, s); err != nil {
				slog.Warn("monitor auto-apply failed, queueing", "id", s.ID, "err", err)
				queued += m.enqueue(runID, s)
				continue
			}
			applied++
			if prefs.NotifyOnApply {
				raw = append(raw, Alert{
					Level:   "info",
					Title:   "Schedule adjusted",
					Message: s.Title,
					Time:    now,
				})
			}

		case s.Type == suggest.TypeSuggestBreak && s.Priority >= detect.PriorityBurnoutCritical &&
			prefs.AutomationLevel == model.AutomationAggressive &&
			workload.BurnoutRisk >= m.cfg.Thresholds.BurnoutCriticalRisk:
			// Critical burnout raises an alert rather than silently mutating
			// the calendar; the break still queues for explicit approval.
			queued += m.enqueue(runID, s)
			if prefs.NotifyOnAlert {
				raw = append(raw, Alert{
					Level:   "critical",
					Title:   "Burnout risk is critical",
					Message: s.Reason,
					Time:    now,
				})
			}

		default:
			queued += m.enqueue(runID, s)
		}
	}

	if err := m.db.FinishRun(runID, len(events), len(gated), applied, queued); err != nil {
		slog.Warn("finishing monitor run record", "err", err)
	}
	return m.emit(raw)
}

// enqueue adds a suggestion to the pending queue and returns 1 when it was
// actually added. Equivalent pending suggestions dedup silently.
func (m *Monitor) enqueue(runID int64, s suggest.Suggestion) int {
	if dup, err := m.db.PendingLike(string(s.Type), s.EventID, s.Title); err == nil && dup {
		return 0
	}
	if err := m.db.Enqueue(runID, s); err != nil {
		slog.Warn("monitor enqueue failed", "id", s.ID, "err", err)
		return 0
	}
	return 1
}

// emit dedups alerts against the previous tick and sends the survivors.
func (m *Monitor) emit(raw []Alert) []Alert {
	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !m.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	m.lastAlertKeys = currentKeys

	for _, a := range alerts {
		m.notify(a)
	}
	return alerts
}

func (m *Monitor) lookaheadDays() int {
	if m.cfg.Monitor.LookaheadDays > 0 {
		return m.cfg.Monitor.LookaheadDays
	}
	return config.DefaultLookaheadDays
}
