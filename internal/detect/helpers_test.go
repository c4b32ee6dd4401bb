package detect

import (
	"time"

	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/model"
)

// monday is the fixed reference day used across detector tests.
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func hoursD(h int) time.Duration {
	return time.Duration(h) * time.Hour
}

func clock(hour, min int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func meeting(id, title string, start, end time.Time, attendees ...string) model.CalendarEvent {
	return model.CalendarEvent{
		ID:        id,
		Title:     title,
		Start:     start,
		End:       end,
		Attendees: attendees,
		Status:    model.StatusConfirmed,
	}
}

// baseInput builds a snapshot with default preferences and thresholds,
// "now" at 07:00 on the reference day.
func baseInput(events ...model.CalendarEvent) Input {
	return Input{
		Events:     events,
		Prefs:      config.DefaultPreferences,
		Thresholds: config.DefaultThresholds,
		Now:        clock(7, 0),
	}
}
