package detect

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/timewise/internal/suggest"
)

const breakMinutes = 30

// Burnout emits break and workload suggestions when the computed burnout
// risk crosses the configured band. Priority scales with risk: in the
// critical band the break suggestion carries the top priority and clears
// the auto-approve confidence bar.
func Burnout(in Input) []suggest.Suggestion {
	risk := in.Workload.BurnoutRisk
	if risk < in.Thresholds.BurnoutSuggestRisk {
		return nil
	}

	critical := risk >= in.Thresholds.BurnoutCriticalRisk
	priority := PriorityBurnout
	confidence := 0.7
	if critical {
		priority = PriorityBurnoutCritical
		confidence = 0.9
	}

	var out []suggest.Suggestion

	// Recovery break in the next open gap, unless one is already on the
	// calendar from an earlier pass.
	if !upcomingBreakScheduled(in) {
		br := suggest.New(suggest.TypeSuggestBreak, priority, confidence)
		br.Source = "burnout"
		br.Title = "Schedule a recovery break"
		br.Reason = fmt.Sprintf("Burnout risk is %.0f/10 (%.1f meetings/day, %.1f scheduled hours this week).",
			risk, in.Workload.MeetingsPerDay, in.Workload.WeeklyHours)
		br.Impact = "A protected pause lowers the risk of a burnout incident."
		if start, end, found := nextFreeGap(in, time.Duration(breakMinutes)*time.Minute); found {
			br.ProposedStart = &start
			br.ProposedEnd = &end
		}
		out = append(out, br)
	}

	// Dense days also get a consolidation recommendation.
	if in.Workload.MeetingsPerDay >= 5 {
		c := suggest.New(suggest.TypeSuggestBreak, PriorityBurnout, 0.6)
		c.Source = "burnout"
		c.Title = "Consolidate scattered meetings"
		c.Reason = fmt.Sprintf("An average of %.1f meetings per day leaves no contiguous focus time.",
			in.Workload.MeetingsPerDay)
		c.Impact = "Batching meetings frees whole mornings or afternoons."
		out = append(out, c)
	}

	if critical {
		r := suggest.New(suggest.TypeSuggestBreak, PriorityBurnout, 0.6)
		r.Source = "burnout"
		r.Title = "Redistribute workload across the week"
		r.Reason = "Critical burnout risk: consider moving non-urgent commitments to next week."
		r.Impact = "Spreads load before it becomes an incident."
		out = append(out, r)
	}

	return out
}

// upcomingBreakScheduled reports whether a break-sized hold already exists
// after Now.
func upcomingBreakScheduled(in Input) bool {
	for _, ev := range in.Events {
		if ev.End.Before(in.Now) || !ev.IsHold() {
			continue
		}
		if ev.Duration() >= time.Duration(breakMinutes)*time.Minute {
			return true
		}
	}
	return false
}

// nextFreeGap finds the first gap after Now that fits the wanted duration.
func nextFreeGap(in Input, want time.Duration) (time.Time, time.Time, bool) {
	cursor := in.Now
	for _, ev := range in.Events {
		if ev.End.Before(cursor) {
			continue
		}
		if ev.Start.Sub(cursor) >= want {
			return cursor, cursor.Add(want), true
		}
		if ev.End.After(cursor) {
			cursor = ev.End
		}
	}
	return cursor, cursor.Add(want), true
}
