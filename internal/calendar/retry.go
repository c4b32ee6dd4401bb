package calendar

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/blackwell-systems/timewise/internal/model"
)

const (
	// callTimeout bounds every collaborator call. Retries beyond the budget
	// belong to the remote collaborator, not this subsystem.
	callTimeout = 10 * time.Second

	maxRetries = 3
)

// Retrying wraps a Collaborator with the single shared retry-with-backoff
// policy applied at the collaborator boundary. Only ErrUnavailable is
// retried; validation errors and ErrNotFound surface immediately.
type Retrying struct {
	inner Collaborator
}

// WithRetry decorates the collaborator with bounded timeouts and
// exponential-backoff retries.
func WithRetry(inner Collaborator) *Retrying {
	return &Retrying{inner: inner}
}

func (r *Retrying) do(ctx context.Context, op string, fn func(context.Context) error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(newBackoff(), maxRetries), ctx)
	return backoff.Retry(func() error {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		err := fn(callCtx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			slog.Debug("calendar call retrying", "op", op, "err", err)
			return err
		}
		return backoff.Permanent(err)
	}, b)
}

func newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

func (r *Retrying) ListEvents(ctx context.Context, calendarID string, rangeStart, rangeEnd time.Time) ([]model.CalendarEvent, error) {
	var out []model.CalendarEvent
	err := r.do(ctx, "list", func(ctx context.Context) error {
		var err error
		out, err = r.inner.ListEvents(ctx, calendarID, rangeStart, rangeEnd)
		return err
	})
	return out, err
}

func (r *Retrying) CreateEvent(ctx context.Context, calendarID string, ev model.CalendarEvent) (model.CalendarEvent, error) {
	var out model.CalendarEvent
	err := r.do(ctx, "create", func(ctx context.Context) error {
		var err error
		out, err = r.inner.CreateEvent(ctx, calendarID, ev)
		return err
	})
	return out, err
}

func (r *Retrying) UpdateEvent(ctx context.Context, calendarID, eventID string, patch Patch) (model.CalendarEvent, error) {
	var out model.CalendarEvent
	err := r.do(ctx, "update", func(ctx context.Context) error {
		var err error
		out, err = r.inner.UpdateEvent(ctx, calendarID, eventID, patch)
		return err
	})
	return out, err
}

func (r *Retrying) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return r.do(ctx, "delete", func(ctx context.Context) error {
		return r.inner.DeleteEvent(ctx, calendarID, eventID)
	})
}
