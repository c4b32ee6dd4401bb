// Package calendar defines the calendar collaborator contract consumed by
// the optimization pipeline, plus the local implementations: an in-memory
// calendar and an ICS-file-backed calendar.
package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/blackwell-systems/timewise/internal/model"
)

// ErrUnavailable indicates the calendar collaborator could not be reached.
// Detectors treat the affected range as empty rather than failing the run.
var ErrUnavailable = errors.New("calendar collaborator unavailable")

// ErrNotFound indicates the referenced event does not exist.
var ErrNotFound = errors.New("event not found")

// Patch describes a partial update to an existing event. Nil fields are
// left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Location    *string
	Start       *time.Time
	End         *time.Time
	Status      *model.EventStatus
}

// Collaborator is the calendar API contract. All four operations may fail
// with ErrUnavailable.
type Collaborator interface {
	ListEvents(ctx context.Context, calendarID string, rangeStart, rangeEnd time.Time) ([]model.CalendarEvent, error)
	CreateEvent(ctx context.Context, calendarID string, ev model.CalendarEvent) (model.CalendarEvent, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, patch Patch) (model.CalendarEvent, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// overlaps reports whether [aStart, aEnd) intersects [bStart, bEnd).
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
