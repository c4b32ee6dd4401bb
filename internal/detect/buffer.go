package detect

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/timewise/internal/suggest"
)

// Buffer emits exactly one add-buffer suggestion for every adjacent event
// pair whose gap is smaller than the preferred buffer. The proposed block
// fills the configured buffer duration starting at the earlier event's end.
// Inserting a buffer never removes a commitment, so confidence sits at the
// auto-approve bar.
func Buffer(in Input) []suggest.Suggestion {
	bufferLen := time.Duration(in.Prefs.BufferMinutes) * time.Minute
	if bufferLen <= 0 || len(in.Events) < 2 {
		return nil
	}

	var out []suggest.Suggestion
	for i := 0; i < len(in.Events)-1; i++ {
		cur, next := in.Events[i], in.Events[i+1]
		// Pairs involving an existing hold already have their buffer.
		if cur.IsHold() || next.IsHold() {
			continue
		}
		gap := next.Start.Sub(cur.End)
		if gap >= bufferLen {
			continue
		}

		start := cur.End
		end := start.Add(bufferLen)

		s := suggest.New(suggest.TypeAddBuffer, PriorityBuffer, 0.8)
		s.Source = "buffer"
		s.EventID = cur.ID
		s.ProposedStart = &start
		s.ProposedEnd = &end
		s.Title = fmt.Sprintf("Add a %d-minute buffer after %q", in.Prefs.BufferMinutes, cur.Title)
		s.Reason = fmt.Sprintf("Only %s between %q and %q; you prefer %d minutes.",
			formatGap(gap), cur.Title, next.Title, in.Prefs.BufferMinutes)
		s.Impact = "Room to reset between meetings."
		out = append(out, s)
	}
	return out
}

func formatGap(gap time.Duration) string {
	if gap <= 0 {
		return "no gap"
	}
	return fmt.Sprintf("%d minutes", int(gap.Minutes()))
}
