// Package apply turns approved suggestions into calendar mutations and
// keeps the pending queue and lifetime stats consistent with what actually
// happened.
package apply

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blackwell-systems/timewise/internal/calendar"
	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/store"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

// Engine applies suggestions against a calendar and records outcomes.
type Engine struct {
	db         *store.DB
	cal        calendar.Collaborator
	calendarID string
}

// New creates an apply engine bound to one calendar.
func New(db *store.DB, cal calendar.Collaborator, calendarID string) *Engine {
	return &Engine{db: db, cal: cal, calendarID: calendarID}
}

// ApplyPending resolves a queued suggestion by ID: the calendar mutation
// happens first, then the queue entry flips to applied and the stats move.
// A calendar failure leaves the suggestion queued so it can be retried.
// store.ErrNotQueued means someone already resolved it.
func (e *Engine) ApplyPending(ctx context.Context, id string) (suggest.Suggestion, error) {
	s, err := e.db.GetPending(id)
	if err != nil {
		return suggest.Suggestion{}, err
	}

	if err := e.mutate(ctx, s); err != nil {
		return s, err
	}

	if err := e.db.Resolve(s.ID, store.StatusApplied); err != nil {
		// The mutation landed but the bookkeeping did not. Surface it; the
		// queue entry stays pending and a retry is harmless for holds and
		// idempotent moves.
		return s, fmt.Errorf("marking %s applied: %w", s.ID, err)
	}
	e.recordApplied(s)
	return s, nil
}

// ApplyDirect applies an auto-approved suggestion that never entered the
// queue. Stats move only on success.
func (e *Engine) ApplyDirect(ctx context.Context, s suggest.Suggestion) error {
	if err := e.mutate(ctx, s); err != nil {
		return err
	}
	e.recordApplied(s)
	return nil
}

// Reject resolves a queued suggestion without touching the calendar.
func (e *Engine) Reject(id string) error {
	if err := e.db.Resolve(id, store.StatusRejected); err != nil {
		return err
	}
	if err := e.db.RecordRejected(); err != nil {
		slog.Warn("recording rejection", "err", err)
	}
	return nil
}

// mutate performs the calendar change a suggestion proposes. Suggestions
// without proposed times are informational and change nothing.
func (e *Engine) mutate(ctx context.Context, s suggest.Suggestion) error {
	if s.ProposedStart == nil || s.ProposedEnd == nil {
		return nil
	}

	switch s.Type {
	case suggest.TypeAddBuffer, suggest.TypeSuggestBreak:
		return e.createHold(ctx, s)
	case suggest.TypeReschedule, suggest.TypeEnergyAlignment,
		suggest.TypeBlockFocusTime, suggest.TypeTravelAdjustment:
		return e.moveEvent(ctx, s)
	}
	return fmt.Errorf("unknown suggestion type %q", s.Type)
}

// createHold inserts a new non-meeting block at the proposed times.
func (e *Engine) createHold(ctx context.Context, s suggest.Suggestion) error {
	title := s.Title
	if title == "" {
		title = "Hold"
	}
	desc := model.HoldTag
	if s.Reason != "" {
		desc = s.Reason + "\n" + model.HoldTag
	}
	_, err := e.cal.CreateEvent(ctx, e.calendarID, model.CalendarEvent{
		Title:       title,
		Description: desc,
		Start:       *s.ProposedStart,
		End:         *s.ProposedEnd,
		Status:      model.StatusConfirmed,
	})
	if err != nil {
		return fmt.Errorf("creating hold for %s: %w", s.ID, err)
	}
	return nil
}

// moveEvent reschedules the referenced event to the proposed times.
func (e *Engine) moveEvent(ctx context.Context, s suggest.Suggestion) error {
	if s.EventID == "" {
		return fmt.Errorf("suggestion %s proposes a move without an event", s.ID)
	}
	_, err := e.cal.UpdateEvent(ctx, e.calendarID, s.EventID, calendar.Patch{
		Start: s.ProposedStart,
		End:   s.ProposedEnd,
	})
	if err != nil {
		return fmt.Errorf("moving event %s: %w", s.EventID, err)
	}
	return nil
}

// recordApplied moves the lifetime counters for a successful application.
// Counter failures are logged, never propagated: the calendar is already
// changed and that is the truth that matters.
func (e *Engine) recordApplied(s suggest.Suggestion) {
	var minutesSaved, focusHours float64
	if s.ProposedStart != nil && s.ProposedEnd != nil {
		span := s.ProposedEnd.Sub(*s.ProposedStart)
		switch s.Type {
		case suggest.TypeAddBuffer:
			minutesSaved = span.Minutes()
		case suggest.TypeBlockFocusTime:
			focusHours = span.Hours()
		}
	}
	if err := e.db.RecordApplied(string(s.Type), minutesSaved, focusHours); err != nil {
		slog.Warn("recording applied suggestion", "id", s.ID, "err", err)
	}
}
