package monitor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/timewise/internal/calendar"
	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/store"
	"github.com/blackwell-systems/timewise/internal/travel"
)

var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func clock(hour, min int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

type stubFlights struct{ status *model.FlightStatus }

func (s *stubFlights) FlightStatus(context.Context, string) (*model.FlightStatus, error) {
	return s.status, nil
}

func testConfig() *config.Config {
	return &config.Config{
		CalendarID:  "primary",
		Preferences: config.DefaultPreferences,
		Thresholds:  config.DefaultThresholds,
		Monitor:     config.Monitor{Interval: "30m", LookaheadDays: 7},
	}
}

func newMonitor(t *testing.T, cfg *config.Config, collector *travel.Collector) (*Monitor, *store.DB, *calendar.Memory, *[]Alert) {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cal := calendar.NewMemory()
	var sent []Alert
	m := New(cfg, db, cal, collector, func(a Alert) { sent = append(sent, a) })
	m.now = func() time.Time { return clock(7, 0) }
	return m, db, cal, &sent
}

func TestRunOnce_AppliesTravelAdjustment(t *testing.T) {
	cfg := testConfig()
	cfg.Monitor.FlightNumber = "UA 212"
	collector := travel.NewCollector(&stubFlights{status: &model.FlightStatus{
		FlightNumber:     "UA 212",
		State:            model.FlightDelayed,
		DelayMinutes:     45,
		ScheduledArrival: clock(14, 0),
	}}, nil)

	m, db, cal, _ := newMonitor(t, cfg, collector)
	cal.Seed("primary", model.CalendarEvent{
		ID: "ev1", Title: "Client kickoff",
		Start: clock(15, 30), End: clock(16, 30), Status: model.StatusConfirmed,
	})

	alerts := m.RunOnce(context.Background())

	// The meeting moved by the delay and the user was told.
	events, err := cal.ListEvents(context.Background(), "primary", clock(0, 0), clock(23, 0))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Start.Equal(clock(16, 15)))

	require.Len(t, alerts, 1)
	assert.Equal(t, "info", alerts[0].Level)

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalApplied)
}

func TestRunOnce_SecondTickIsIdempotent(t *testing.T) {
	cfg := testConfig()
	cfg.Monitor.FlightNumber = "UA 212"
	collector := travel.NewCollector(&stubFlights{status: &model.FlightStatus{
		FlightNumber:     "UA 212",
		State:            model.FlightDelayed,
		DelayMinutes:     45,
		ScheduledArrival: clock(14, 0),
	}}, nil)

	m, _, cal, _ := newMonitor(t, cfg, collector)
	cal.Seed("primary", model.CalendarEvent{
		ID: "ev1", Title: "Client kickoff",
		Start: clock(15, 30), End: clock(16, 30), Status: model.StatusConfirmed,
	})

	m.RunOnce(context.Background())
	alerts := m.RunOnce(context.Background())

	// The signal is unchanged and the meeting already cleared the arrival,
	// so the second tick does nothing.
	assert.Empty(t, alerts)
	events, err := cal.ListEvents(context.Background(), "primary", clock(0, 0), clock(23, 0))
	require.NoError(t, err)
	assert.True(t, events[0].Start.Equal(clock(16, 15)), "second tick must not shift again")
}

func TestRunOnce_CriticalBurnoutAlertsInsteadOfMutating(t *testing.T) {
	cfg := testConfig()
	cfg.Preferences.AutomationLevel = model.AutomationAggressive
	m, db, cal, _ := newMonitor(t, cfg, nil)

	// Two solid days of meetings to push the burnout score into the
	// critical band.
	var seeded []model.CalendarEvent
	for day := 1; day <= 2; day++ {
		for h := 9; h < 17; h++ {
			start := monday.AddDate(0, 0, day).Add(time.Duration(h) * time.Hour)
			seeded = append(seeded, model.CalendarEvent{
				ID:     fmt.Sprintf("d%dh%d", day, h),
				Title:  "Meeting",
				Start:  start,
				End:    start.Add(time.Hour),
				Status: model.StatusConfirmed,
			})
		}
	}
	cal.Seed("primary", seeded...)
	before := len(seeded)

	alerts := m.RunOnce(context.Background())

	var critical int
	for _, a := range alerts {
		if a.Level == "critical" {
			critical++
		}
	}
	assert.Equal(t, 1, critical, "expected exactly one critical alert")

	// No mutation: the calendar has the same events as before.
	events, err := cal.ListEvents(context.Background(), "primary", monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Len(t, events, before)

	// The break still queues for explicit approval.
	pending, err := db.Pending()
	require.NoError(t, err)
	assert.NotEmpty(t, pending)
}

func TestRunOnce_AlertDedupBetweenTicks(t *testing.T) {
	cfg := testConfig()
	m, _, cal, sent := newMonitor(t, cfg, nil)
	cal.SetFailure(calendar.ErrUnavailable)

	first := m.RunOnce(context.Background())
	require.Len(t, first, 1)
	assert.Equal(t, "Calendar unreachable", first[0].Title)

	second := m.RunOnce(context.Background())
	assert.Empty(t, second, "identical alert must be suppressed on the next tick")
	assert.Len(t, *sent, 1)
}

func TestRunOnce_QuietScheduleRaisesNothing(t *testing.T) {
	m, db, cal, _ := newMonitor(t, testConfig(), nil)
	cal.Seed("primary", model.CalendarEvent{
		ID: "ev1", Title: "1:1",
		Start: clock(9, 0), End: clock(9, 30), Status: model.StatusConfirmed,
	})

	alerts := m.RunOnce(context.Background())
	assert.Empty(t, alerts)

	pending, err := db.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	runs, err := db.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.TriggerMonitor, runs[0].TriggeredBy)
}

func TestStartRejectsBadInterval(t *testing.T) {
	cfg := testConfig()
	cfg.Monitor.Interval = "sometimes"
	m, _, _, _ := newMonitor(t, cfg, nil)
	assert.Error(t, m.Start())
}

func TestStartStop(t *testing.T) {
	m, _, _, _ := newMonitor(t, testConfig(), nil)
	require.NoError(t, m.Start())
	m.Stop()
}
