// Package schedule provides the normalized, timezone-aware view of calendar
// events and preferences consumed by the signal detectors, plus the derived
// workload analysis.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/blackwell-systems/timewise/internal/calendar"
	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/model"
)

// ErrDataUnavailable indicates event data could not be loaded. Detectors
// must treat the range as empty and never crash the pipeline.
var ErrDataUnavailable = errors.New("schedule data unavailable")

// LoadEvents returns the events in [rangeStart, rangeEnd) sorted ascending
// by start time, with cancelled and malformed entries filtered out. On
// collaborator failure it returns ErrDataUnavailable.
func LoadEvents(ctx context.Context, cal calendar.Collaborator, calendarID string, rangeStart, rangeEnd time.Time) ([]model.CalendarEvent, error) {
	events, err := cal.ListEvents(ctx, calendarID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	out := events[:0]
	for _, ev := range events {
		if !ev.Valid() {
			slog.Debug("skipping malformed event", "id", ev.ID)
			continue
		}
		if ev.Status == model.StatusCancelled {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// LoadPreferences returns the configured preferences, substituting the
// documented defaults when the stored values are unusable. Substitution is
// not an error.
func LoadPreferences(cfg *config.Config) model.UserPreferences {
	prefs := cfg.Preferences
	if _, err := model.ParseClock(prefs.WorkdayStart); err != nil {
		slog.Info("stored preferences unusable, using defaults", "err", err)
		return config.DefaultPreferences
	}
	if _, err := model.ParseClock(prefs.WorkdayEnd); err != nil {
		slog.Info("stored preferences unusable, using defaults", "err", err)
		return config.DefaultPreferences
	}
	return prefs
}
