package detect

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

const (
	// focusMoveDelay is the minimum distance an alternative slot must sit
	// past the conflicting event.
	focusMoveDelay = 2 * time.Hour

	// focusSearchHorizon bounds the alternative-slot scan.
	focusSearchHorizon = 48 * time.Hour

	focusSearchStep = 30 * time.Minute
)

// FocusTime flags events that intrude on configured focus blocks and tries
// to find an alternative slot at least two hours later with no conflicts.
// When no slot exists the suggestion is informational (no proposed time).
// Moving a user-scheduled meeting always requires explicit consent, so the
// gate never auto-approves these.
func FocusTime(in Input) []suggest.Suggestion {
	blocks := model.ParseWindows(in.Prefs.FocusBlocks)
	if len(blocks) == 0 {
		return nil
	}

	var out []suggest.Suggestion
	for _, ev := range in.Events {
		block, ok := windowContaining(blocks, ev.Start)
		if !ok {
			continue
		}

		s := suggest.New(suggest.TypeBlockFocusTime, PriorityFocus, 0.75)
		s.Source = "focus"
		s.EventID = ev.ID
		s.Title = fmt.Sprintf("%q lands in your focus block", ev.Title)
		s.Reason = fmt.Sprintf("%q starts at %s, inside the %s block you reserve for uninterrupted work.",
			ev.Title, ev.Start.Format("15:04"), block)
		s.Impact = "Protects your deep-work time."

		if start, end, found := laterSlot(ev, blocks, in); found {
			s.ProposedStart = &start
			s.ProposedEnd = &end
		}
		out = append(out, s)
	}
	return out
}

// laterSlot scans forward in half-hour steps for a conflict-free slot that
// starts at least focusMoveDelay after the event and avoids all focus
// blocks.
func laterSlot(ev model.CalendarEvent, blocks []model.Window, in Input) (time.Time, time.Time, bool) {
	duration := ev.Duration()
	earliest := ev.Start.Add(focusMoveDelay)
	limit := ev.Start.Add(focusSearchHorizon)

	for start := earliest; start.Before(limit); start = start.Add(focusSearchStep) {
		end := start.Add(duration)
		if _, insideBlock := windowContaining(blocks, start); insideBlock {
			continue
		}
		if conflictsWith(in.Events, start, end, ev.ID) {
			continue
		}
		return start, end, true
	}
	return time.Time{}, time.Time{}, false
}
