package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/timewise/internal/calendar"
	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/detect"
	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/store"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func clock(hour, min int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func testConfig() *config.Config {
	return &config.Config{
		CalendarID:  "primary",
		Preferences: config.DefaultPreferences,
		Thresholds:  config.DefaultThresholds,
		Monitor:     config.Monitor{LookaheadDays: 7},
	}
}

func newOptimizer(t *testing.T, cfg *config.Config) (*Optimizer, *store.DB, *calendar.Memory) {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cal := calendar.NewMemory()
	o := New(cfg, db, cal, detect.NewEngine(), nil, nil)
	o.now = func() time.Time { return clock(7, 0) }
	return o, db, cal
}

func seedWorkday(cal *calendar.Memory) {
	cal.Seed("primary",
		model.CalendarEvent{ID: "ev1", Title: "Standup", Start: clock(9, 0), End: clock(10, 0), Status: model.StatusConfirmed},
		model.CalendarEvent{ID: "ev2", Title: "1:1", Start: clock(10, 5), End: clock(10, 30), Status: model.StatusConfirmed},
		model.CalendarEvent{ID: "ev3", Title: "Strategy review", Start: clock(13, 0), End: clock(14, 0), Status: model.StatusConfirmed},
	)
}

func TestRunFull_AppliesAndQueues(t *testing.T) {
	o, db, cal := newOptimizer(t, testConfig())
	seedWorkday(cal)

	report, err := o.RunFull(context.Background(), store.TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 3, report.EventsScanned)
	require.NotEmpty(t, report.Suggestions)

	// Moderate automation: the buffer insertion auto-applies, the
	// commitment-altering energy move queues for review.
	require.Len(t, report.AutoApplied, 1)
	assert.Equal(t, suggest.TypeAddBuffer, report.AutoApplied[0].Type)

	require.Len(t, report.Queued, 1)
	assert.Equal(t, suggest.TypeEnergyAlignment, report.Queued[0].Type)
	assert.Equal(t, "ev3", report.Queued[0].EventID)

	// The buffer hold is on the calendar.
	events, err := cal.ListEvents(context.Background(), "primary", clock(0, 0), clock(23, 0))
	require.NoError(t, err)
	assert.Len(t, events, 4)

	// Queue and history reflect the pass.
	pending, err := db.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	runs, err := db.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.TriggerManual, runs[0].TriggeredBy)
	assert.Equal(t, 1, runs[0].AutoApplied)
	assert.Equal(t, 1, runs[0].Queued)

	assert.NotEmpty(t, report.Summary)
}

func TestRunFull_SecondPassIsIdempotent(t *testing.T) {
	o, db, cal := newOptimizer(t, testConfig())
	seedWorkday(cal)

	_, err := o.RunFull(context.Background(), store.TriggerManual)
	require.NoError(t, err)

	second, err := o.RunFull(context.Background(), store.TriggerMonitor)
	require.NoError(t, err)

	// The applied buffer is now part of the calendar and the queued energy
	// move dedups, so the second pass changes nothing.
	assert.Empty(t, second.AutoApplied)
	assert.Empty(t, second.Queued)

	events, err := cal.ListEvents(context.Background(), "primary", clock(0, 0), clock(23, 0))
	require.NoError(t, err)
	assert.Len(t, events, 4, "second pass must not add more holds")

	pending, err := db.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1, "second pass must not duplicate queue entries")
}

func TestRunFull_MinimalAutomationQueuesEverything(t *testing.T) {
	cfg := testConfig()
	cfg.Preferences.AutomationLevel = model.AutomationMinimal
	o, db, cal := newOptimizer(t, cfg)
	seedWorkday(cal)

	report, err := o.RunFull(context.Background(), store.TriggerManual)
	require.NoError(t, err)

	assert.Empty(t, report.AutoApplied)
	assert.Len(t, report.Queued, len(report.Suggestions))

	events, err := cal.ListEvents(context.Background(), "primary", clock(0, 0), clock(23, 0))
	require.NoError(t, err)
	assert.Len(t, events, 3, "minimal automation must not touch the calendar")

	pending, err := db.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, len(report.Suggestions))
}

func TestRunFull_CalendarOutageDegradesToEmptyRange(t *testing.T) {
	o, _, cal := newOptimizer(t, testConfig())
	seedWorkday(cal)
	cal.SetFailure(calendar.ErrUnavailable)

	report, err := o.RunFull(context.Background(), store.TriggerManual)
	require.NoError(t, err, "an unreachable calendar must not fail the run")

	assert.Equal(t, 0, report.EventsScanned)
	assert.Empty(t, report.Suggestions)
	assert.NotEmpty(t, report.Summary)
}

func TestRunFull_EmptyCalendarIsQuiet(t *testing.T) {
	o, db, _ := newOptimizer(t, testConfig())

	report, err := o.RunFull(context.Background(), store.TriggerManual)
	require.NoError(t, err)
	assert.Empty(t, report.Suggestions)

	runs, err := db.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 0, runs[0].Generated)
}
