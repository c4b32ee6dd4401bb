package detect

import (
	"testing"
	"time"

	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

func TestBuffer_EmitsPerTightPair(t *testing.T) {
	// Gaps: 5 min (tight), 30 min (fine), 0 min (tight).
	in := baseInput(
		meeting("a", "one", clock(9, 0), clock(10, 0)),
		meeting("b", "two", clock(10, 5), clock(10, 30)),
		meeting("c", "three", clock(11, 0), clock(12, 0)),
		meeting("d", "four", clock(12, 0), clock(12, 30)),
	)

	out := Buffer(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(out))
	}
	for _, s := range out {
		if s.Type != suggest.TypeAddBuffer {
			t.Errorf("expected add_buffer, got %s", s.Type)
		}
		if s.Confidence != 0.8 {
			t.Errorf("expected confidence 0.8, got %f", s.Confidence)
		}
	}

	// First suggestion fills exactly the buffer length starting at a's end.
	first := out[0]
	if !first.ProposedStart.Equal(clock(10, 0)) {
		t.Errorf("expected buffer at 10:00, got %s", first.ProposedStart)
	}
	if got := first.ProposedEnd.Sub(*first.ProposedStart); got != 15*time.Minute {
		t.Errorf("expected 15-minute buffer, got %s", got)
	}
}

func TestBuffer_NoSuggestionsWhenGapsSufficient(t *testing.T) {
	in := baseInput(
		meeting("a", "one", clock(9, 0), clock(10, 0)),
		meeting("b", "two", clock(10, 15), clock(11, 0)),
	)

	if out := Buffer(in); len(out) != 0 {
		t.Fatalf("expected no suggestions at exactly the buffer gap, got %d", len(out))
	}
}

func TestBuffer_SingleEvent(t *testing.T) {
	in := baseInput(meeting("a", "solo", clock(9, 0), clock(10, 0)))
	if out := Buffer(in); len(out) != 0 {
		t.Fatalf("expected no suggestions for a single event, got %d", len(out))
	}
}

func TestBuffer_ZeroBufferPreferenceDisables(t *testing.T) {
	in := baseInput(
		meeting("a", "one", clock(9, 0), clock(10, 0)),
		meeting("b", "two", clock(10, 1), clock(11, 0)),
	)
	in.Prefs.BufferMinutes = 0

	if out := Buffer(in); len(out) != 0 {
		t.Fatalf("expected detector disabled at zero buffer, got %d", len(out))
	}
}

func TestBuffer_SkipsExistingHolds(t *testing.T) {
	hold := meeting("h", "Buffer", clock(10, 0), clock(10, 15))
	hold.Description = model.HoldTag
	in := baseInput(
		meeting("a", "one", clock(9, 0), clock(10, 0)),
		hold,
		meeting("b", "two", clock(10, 15), clock(11, 0)),
	)

	if out := Buffer(in); len(out) != 0 {
		t.Fatalf("expected no suggestions around an existing hold, got %d", len(out))
	}
}

func TestBuffer_BackToBackMeetings(t *testing.T) {
	in := baseInput(
		meeting("a", "one", clock(9, 0), clock(10, 0)),
		meeting("b", "two", clock(10, 0), clock(11, 0)),
	)

	out := Buffer(in)
	if len(out) != 1 {
		t.Fatalf("expected 1 suggestion for back-to-back pair, got %d", len(out))
	}
}
