package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/timewise/internal/model"
)

// Memory is an in-process calendar keyed by calendar ID. It backs tests and
// the local demo mode, and serializes all access behind a mutex so the
// interactive flow and the monitor can share one instance.
type Memory struct {
	mu     sync.Mutex
	events map[string]map[string]model.CalendarEvent // calendarID -> eventID -> event

	// failWith, when set, makes every operation return that error. Used to
	// simulate collaborator outages.
	failWith error
}

// NewMemory creates an empty in-memory calendar.
func NewMemory() *Memory {
	return &Memory{events: make(map[string]map[string]model.CalendarEvent)}
}

// SetFailure makes all subsequent operations fail with err; pass nil to
// restore normal behavior.
func (m *Memory) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Seed inserts events directly, bypassing validation of IDs. Intended for
// test setup.
func (m *Memory) Seed(calendarID string, events ...model.CalendarEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range events {
		m.bucket(calendarID)[ev.ID] = ev
	}
}

func (m *Memory) bucket(calendarID string) map[string]model.CalendarEvent {
	b, ok := m.events[calendarID]
	if !ok {
		b = make(map[string]model.CalendarEvent)
		m.events[calendarID] = b
	}
	return b
}

// ListEvents returns events intersecting [rangeStart, rangeEnd), sorted
// ascending by start time.
func (m *Memory) ListEvents(ctx context.Context, calendarID string, rangeStart, rangeEnd time.Time) ([]model.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []model.CalendarEvent
	for _, ev := range m.bucket(calendarID) {
		if overlaps(ev.Start, ev.End, rangeStart, rangeEnd) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// CreateEvent stores a new event, assigning an ID when none is provided.
func (m *Memory) CreateEvent(ctx context.Context, calendarID string, ev model.CalendarEvent) (model.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return model.CalendarEvent{}, m.failWith
	}
	if err := ctx.Err(); err != nil {
		return model.CalendarEvent{}, err
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Status == "" {
		ev.Status = model.StatusConfirmed
	}
	if !ev.End.After(ev.Start) {
		return model.CalendarEvent{}, fmt.Errorf("event %q: end must be after start", ev.ID)
	}
	m.bucket(calendarID)[ev.ID] = ev
	return ev, nil
}

// UpdateEvent applies a patch to an existing event.
func (m *Memory) UpdateEvent(ctx context.Context, calendarID, eventID string, patch Patch) (model.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return model.CalendarEvent{}, m.failWith
	}
	if err := ctx.Err(); err != nil {
		return model.CalendarEvent{}, err
	}

	ev, ok := m.bucket(calendarID)[eventID]
	if !ok {
		return model.CalendarEvent{}, fmt.Errorf("update %q: %w", eventID, ErrNotFound)
	}
	applyPatch(&ev, patch)
	if !ev.End.After(ev.Start) {
		return model.CalendarEvent{}, fmt.Errorf("update %q: end must be after start", eventID)
	}
	m.bucket(calendarID)[eventID] = ev
	return ev, nil
}

// DeleteEvent removes an event.
func (m *Memory) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, ok := m.bucket(calendarID)[eventID]; !ok {
		return fmt.Errorf("delete %q: %w", eventID, ErrNotFound)
	}
	delete(m.bucket(calendarID), eventID)
	return nil
}

func applyPatch(ev *model.CalendarEvent, patch Patch) {
	if patch.Title != nil {
		ev.Title = *patch.Title
	}
	if patch.Description != nil {
		ev.Description = *patch.Description
	}
	if patch.Location != nil {
		ev.Location = *patch.Location
	}
	if patch.Start != nil {
		ev.Start = *patch.Start
	}
	if patch.End != nil {
		ev.End = *patch.End
	}
	if patch.Status != nil {
		ev.Status = *patch.Status
	}
}
