package detect

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

// Travel reacts to live flight and commute signals. Flight delays beyond
// the major band shift affected meetings by the delay amount at high
// confidence (delays are objective facts outside user control); delays in
// the minor band recommend remote attendance instead. Commute routes whose
// live traffic factor exceeds the limit get a departure buffer proportional
// to the excess delay.
func Travel(in Input) []suggest.Suggestion {
	var out []suggest.Suggestion
	if in.Travel.Flight != nil {
		out = append(out, flightSuggestions(in, *in.Travel.Flight)...)
	}
	if in.Travel.Route != nil {
		out = append(out, routeSuggestions(in, *in.Travel.Route)...)
	}
	return out
}

func flightSuggestions(in Input, f model.FlightStatus) []suggest.Suggestion {
	if f.State != model.FlightDelayed || f.DelayMinutes < in.Thresholds.MinorDelayMinutes {
		return nil
	}

	arrival := f.Arrival()
	window := time.Duration(in.Thresholds.PostArrivalWindowHours) * time.Hour
	delay := time.Duration(f.DelayMinutes) * time.Minute
	major := f.DelayMinutes > in.Thresholds.MajorDelayMinutes

	var out []suggest.Suggestion
	for _, ev := range in.Events {
		// At-risk events start between the scheduled arrival and the shifted
		// arrival plus the post-arrival window.
		if ev.Start.Before(f.ScheduledArrival) || ev.Start.After(arrival.Add(window)) {
			continue
		}

		if major {
			start := ev.Start.Add(delay)
			end := ev.End.Add(delay)

			s := suggest.New(suggest.TypeTravelAdjustment, PriorityTravel, 0.92)
			s.Source = "travel"
			s.EventID = ev.ID
			s.ProposedStart = &start
			s.ProposedEnd = &end
			s.Title = fmt.Sprintf("Shift %q for flight %s delay", ev.Title, f.FlightNumber)
			s.Reason = fmt.Sprintf("Flight %s is delayed %d minutes (%s); %q starts too close to your arrival.",
				f.FlightNumber, f.DelayMinutes, delayReason(f), ev.Title)
			s.Impact = fmt.Sprintf("Moves the meeting %d minutes later so you can make it.", f.DelayMinutes)
			out = append(out, s)
			continue
		}

		s := suggest.New(suggest.TypeTravelAdjustment, PriorityTravel, 0.6)
		s.Source = "travel"
		s.EventID = ev.ID
		s.Title = fmt.Sprintf("Consider joining %q remotely", ev.Title)
		s.Reason = fmt.Sprintf("Flight %s is running %d minutes late; attending %q remotely avoids a rushed arrival.",
			f.FlightNumber, f.DelayMinutes, ev.Title)
		s.Impact = "Keeps the meeting without the sprint from the gate."
		out = append(out, s)
	}
	return out
}

func delayReason(f model.FlightStatus) string {
	if f.Reason == "" {
		return "no reason given"
	}
	return f.Reason
}

func routeSuggestions(in Input, r model.RouteConditions) []suggest.Suggestion {
	if r.TrafficFactor <= in.Thresholds.TrafficFactorLimit {
		return nil
	}

	excess := r.LiveMinutes - r.NormalMinutes
	if excess <= 0 {
		return nil
	}

	var out []suggest.Suggestion
	for _, ev := range in.Events {
		if ev.Start.Before(in.Now) {
			continue
		}
		if !routeMatches(ev, r.Route) {
			continue
		}

		start := ev.Start.Add(-time.Duration(excess) * time.Minute)
		end := ev.Start

		// A departure buffer is a new hold block, not a move of the meeting,
		// so it goes out as add_buffer at travel priority.
		s := suggest.New(suggest.TypeAddBuffer, PriorityTravel, 0.85)
		s.Source = "travel"
		s.EventID = ev.ID
		s.ProposedStart = &start
		s.ProposedEnd = &end
		s.Title = fmt.Sprintf("Leave %d minutes earlier for %q", excess, ev.Title)
		s.Reason = fmt.Sprintf("Traffic on %s is running %.1fx normal (%d vs %d minutes).",
			r.Route, r.TrafficFactor, r.LiveMinutes, r.NormalMinutes)
		s.Impact = "A departure buffer absorbs the congestion."
		out = append(out, s)
	}
	return out
}

// routeMatches checks whether the event's location depends on the named
// route. Matching is by substring; finer mapping belongs to the traffic
// collaborator.
func routeMatches(ev model.CalendarEvent, route string) bool {
	if route == "" || ev.Location == "" {
		return false
	}
	return strings.Contains(strings.ToLower(ev.Location), strings.ToLower(route))
}
