package detect

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

// searchDays is how many days ahead the energy detector looks for an open
// high-energy slot.
const searchDays = 7

// EnergyAlignment flags important events scheduled inside a low-energy
// window and proposes moving them to the nearest conflict-free high-energy
// window. Confidence reflects how poorly the event is aligned: an event
// fully inside a low-energy window clears the auto-approve bar, a partial
// overlap does not.
func EnergyAlignment(in Input) []suggest.Suggestion {
	lows := model.ParseWindows(in.Prefs.LowEnergyWindows)
	highs := model.ParseWindows(in.Prefs.HighEnergyWindows)
	if len(lows) == 0 || len(highs) == 0 {
		return nil
	}

	var out []suggest.Suggestion
	for _, ev := range in.Events {
		low, ok := windowContaining(lows, ev.Start)
		if !ok {
			continue
		}
		if !isImportant(ev, in) {
			continue
		}

		confidence := 0.7
		if fullyInside(ev, low) {
			confidence = 0.85
		}

		s := suggest.New(suggest.TypeEnergyAlignment, PriorityEnergy, confidence)
		s.Source = "energy"
		s.EventID = ev.ID
		s.Title = fmt.Sprintf("Move %q out of a low-energy window", ev.Title)
		s.Reason = fmt.Sprintf("%q starts at %s, inside your low-energy window %s.",
			ev.Title, ev.Start.Format("15:04"), low)
		s.Impact = "Important work lands when you have the energy for it."

		if start, end, found := nearestHighSlot(ev, highs, in); found {
			s.ProposedStart = &start
			s.ProposedEnd = &end
			s.Reason += fmt.Sprintf(" A high-energy slot is open at %s.", start.Format("Mon 15:04"))
		} else {
			// No conflict-free slot: keep the finding, drop the confidence
			// below the auto-approve bar so it queues as informational.
			s.Confidence = 0.5
		}
		out = append(out, s)
	}
	return out
}

// isImportant applies the tunable importance test: long enough, or enough
// attendees.
func isImportant(ev model.CalendarEvent, in Input) bool {
	return ev.Duration() >= time.Duration(in.Thresholds.ImportantMeetingMinutes)*time.Minute ||
		len(ev.Attendees) >= in.Thresholds.ImportantAttendees
}

func windowContaining(windows []model.Window, t time.Time) (model.Window, bool) {
	for _, w := range windows {
		if w.Contains(t) {
			return w, true
		}
	}
	return model.Window{}, false
}

func fullyInside(ev model.CalendarEvent, w model.Window) bool {
	endMins := ev.End.Hour()*60 + ev.End.Minute()
	return w.Contains(ev.Start) && endMins <= w.End && ev.Start.Day() == ev.End.Day()
}

// nearestHighSlot scans each high-energy window on the event's day and the
// following days for the first slot that fits the event without conflicts,
// returning the candidate closest in time to the event's current start.
func nearestHighSlot(ev model.CalendarEvent, highs []model.Window, in Input) (time.Time, time.Time, bool) {
	duration := ev.Duration()

	var bestStart, bestEnd time.Time
	var bestDist time.Duration
	found := false

	for offset := 0; offset < searchDays; offset++ {
		day := ev.Start.AddDate(0, 0, offset)
		for _, w := range highs {
			if time.Duration(w.Minutes())*time.Minute < duration {
				continue
			}
			start, _ := w.At(day)
			end := start.Add(duration)
			if start.Before(in.Now) {
				continue
			}
			if conflictsWith(in.Events, start, end, ev.ID) {
				continue
			}
			dist := absDuration(start.Sub(ev.Start))
			if !found || dist < bestDist {
				bestStart, bestEnd, bestDist = start, end, dist
				found = true
			}
		}
	}
	return bestStart, bestEnd, found
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
