package apply

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/timewise/internal/calendar"
	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/store"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

const testCalendar = "primary"

func newEngine(t *testing.T) (*Engine, *store.DB, *calendar.Memory) {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cal := calendar.NewMemory()
	return New(db, cal, testCalendar), db, cal
}

func at(hour int) time.Time {
	return time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC)
}

func queuedBuffer(t *testing.T, db *store.DB) suggest.Suggestion {
	t.Helper()
	start, end := at(10), at(10).Add(15*time.Minute)
	s := suggest.New(suggest.TypeAddBuffer, 6, 0.8)
	s.Title = "Buffer before standup"
	s.Reason = "Back-to-back meetings"
	s.Source = "buffer"
	s.ProposedStart = &start
	s.ProposedEnd = &end
	require.NoError(t, db.Enqueue(0, s))
	return s
}

func TestApplyPending_CreatesHold(t *testing.T) {
	eng, db, cal := newEngine(t)
	s := queuedBuffer(t, db)

	applied, err := eng.ApplyPending(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, applied.ID)

	events, err := cal.ListEvents(context.Background(), testCalendar, at(0), at(23))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Buffer before standup", events[0].Title)
	assert.True(t, events[0].Start.Equal(at(10)))

	// Resolved out of the queue, counted in the stats.
	pending, err := db.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalApplied)
	assert.InDelta(t, 15, stats.MinutesSaved, 1e-9)
}

func TestApplyPending_MovesEvent(t *testing.T) {
	eng, db, cal := newEngine(t)
	cal.Seed(testCalendar, model.CalendarEvent{
		ID: "ev-1", Title: "Strategy review",
		Start: at(13), End: at(14), Status: model.StatusConfirmed,
	})

	start, end := at(9), at(10)
	s := suggest.New(suggest.TypeEnergyAlignment, 7, 0.85)
	s.Title = "Move strategy review"
	s.Reason = "Low-energy slot"
	s.Source = "energy"
	s.EventID = "ev-1"
	s.ProposedStart = &start
	s.ProposedEnd = &end
	require.NoError(t, db.Enqueue(0, s))

	_, err := eng.ApplyPending(context.Background(), s.ID)
	require.NoError(t, err)

	events, err := cal.ListEvents(context.Background(), testCalendar, at(0), at(23))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Start.Equal(at(9)))
	assert.True(t, events[0].End.Equal(at(10)))
}

func TestApplyPending_CalendarFailureKeepsQueued(t *testing.T) {
	eng, db, cal := newEngine(t)
	s := queuedBuffer(t, db)
	cal.SetFailure(calendar.ErrUnavailable)

	_, err := eng.ApplyPending(context.Background(), s.ID)
	require.Error(t, err)

	// Still pending, nothing counted.
	pending, err := db.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalApplied)

	// Retry succeeds once the calendar recovers.
	cal.SetFailure(nil)
	_, err = eng.ApplyPending(context.Background(), s.ID)
	require.NoError(t, err)
}

func TestApplyPending_AlreadyResolved(t *testing.T) {
	eng, db, _ := newEngine(t)
	s := queuedBuffer(t, db)

	_, err := eng.ApplyPending(context.Background(), s.ID)
	require.NoError(t, err)

	_, err = eng.ApplyPending(context.Background(), s.ID)
	assert.ErrorIs(t, err, store.ErrNotQueued)
}

func TestApplyDirect_SkipsQueue(t *testing.T) {
	eng, db, cal := newEngine(t)

	start, end := at(8), at(8).Add(30*time.Minute)
	s := suggest.New(suggest.TypeAddBuffer, 9, 0.85)
	s.Title = "Leave earlier"
	s.Source = "travel"
	s.ProposedStart = &start
	s.ProposedEnd = &end

	require.NoError(t, eng.ApplyDirect(context.Background(), s))

	events, err := cal.ListEvents(context.Background(), testCalendar, at(0), at(23))
	require.NoError(t, err)
	assert.Len(t, events, 1)

	pending, err := db.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApply_InformationalSuggestionOnlyResolves(t *testing.T) {
	eng, db, cal := newEngine(t)

	s := suggest.New(suggest.TypeTravelAdjustment, 9, 0.6)
	s.Title = "Join remotely"
	s.Reason = "Minor flight delay"
	s.Source = "travel"
	s.EventID = "ev-1"
	require.NoError(t, db.Enqueue(0, s))

	_, err := eng.ApplyPending(context.Background(), s.ID)
	require.NoError(t, err)

	events, err := cal.ListEvents(context.Background(), testCalendar, at(0), at(23))
	require.NoError(t, err)
	assert.Empty(t, events, "informational suggestions must not touch the calendar")
}

func TestReject(t *testing.T) {
	eng, db, cal := newEngine(t)
	s := queuedBuffer(t, db)

	require.NoError(t, eng.Reject(s.ID))

	pending, err := db.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	events, err := cal.ListEvents(context.Background(), testCalendar, at(0), at(23))
	require.NoError(t, err)
	assert.Empty(t, events)

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalRejected)

	assert.ErrorIs(t, eng.Reject(s.ID), store.ErrNotQueued)
}

func TestApply_FocusMoveCountsProtectedHours(t *testing.T) {
	eng, db, cal := newEngine(t)
	cal.Seed(testCalendar, model.CalendarEvent{
		ID: "ev-2", Title: "Status call",
		Start: at(9), End: at(10), Status: model.StatusConfirmed,
	})

	start, end := at(13), at(14)
	s := suggest.New(suggest.TypeBlockFocusTime, 8, 0.75)
	s.Title = "Move status call out of focus block"
	s.Source = "focus"
	s.EventID = "ev-2"
	s.ProposedStart = &start
	s.ProposedEnd = &end
	require.NoError(t, db.Enqueue(0, s))

	_, err := eng.ApplyPending(context.Background(), s.ID)
	require.NoError(t, err)

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.InDelta(t, 1, stats.FocusHoursProtected, 1e-9)
}
