package detect

import (
	"context"
	"testing"

	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

func TestEngine_DeterministicOrder(t *testing.T) {
	// A snapshot that triggers buffer, focus and burnout at once.
	in := baseInput(
		meeting("a", "one", clock(9, 0), clock(10, 0)),
		meeting("b", "two", clock(10, 5), clock(11, 0)),
	)
	in.Prefs.FocusBlocks = []string{"09:00-11:00"}
	in.Workload = model.WorkloadAnalysis{BurnoutRisk: 7}

	eng := NewEngine()
	first := eng.Run(context.Background(), in)
	if len(first) == 0 {
		t.Fatal("expected suggestions from the combined snapshot")
	}

	// Types must repeat in registration order on every run.
	for range 20 {
		again := eng.Run(context.Background(), in)
		if len(again) != len(first) {
			t.Fatalf("expected %d suggestions, got %d", len(first), len(again))
		}
		for i := range again {
			if again[i].Type != first[i].Type || again[i].EventID != first[i].EventID {
				t.Fatalf("order changed at %d: %s/%s vs %s/%s",
					i, again[i].Type, again[i].EventID, first[i].Type, first[i].EventID)
			}
		}
	}
}

func TestEngine_PanickingDetectorIsolated(t *testing.T) {
	eng := &Engine{detectors: []namedDetector{
		{"boom", func(Input) []suggest.Suggestion { panic("bad snapshot") }},
		{"buffer", Buffer},
	}}

	in := baseInput(
		meeting("a", "one", clock(9, 0), clock(10, 0)),
		meeting("b", "two", clock(10, 0), clock(11, 0)),
	)

	out := eng.Run(context.Background(), in)
	if len(out) != 1 {
		t.Fatalf("expected the surviving detector's suggestion, got %d", len(out))
	}
	if out[0].Type != suggest.TypeAddBuffer {
		t.Errorf("expected add_buffer, got %s", out[0].Type)
	}
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := baseInput(
		meeting("a", "one", clock(9, 0), clock(10, 0)),
		meeting("b", "two", clock(10, 0), clock(11, 0)),
	)

	if out := NewEngine().Run(ctx, in); len(out) != 0 {
		t.Fatalf("expected no work after cancellation, got %d", len(out))
	}
}

func TestTravelEngine_ReducedSet(t *testing.T) {
	// Tight back-to-back meetings would trip the buffer detector, but the
	// travel engine does not run it.
	in := baseInput(
		meeting("a", "one", clock(9, 0), clock(10, 0)),
		meeting("b", "two", clock(10, 0), clock(11, 0)),
	)

	if out := NewTravelEngine().Run(context.Background(), in); len(out) != 0 {
		t.Fatalf("expected quiet travel engine, got %d suggestions", len(out))
	}

	in.Travel.Flight = &model.FlightStatus{
		State:            model.FlightDelayed,
		DelayMinutes:     45,
		ScheduledArrival: clock(8, 30),
	}
	out := NewTravelEngine().Run(context.Background(), in)
	if len(out) == 0 {
		t.Fatal("expected travel suggestions from the reduced engine")
	}
	for _, s := range out {
		if s.Type != suggest.TypeTravelAdjustment {
			t.Errorf("unexpected type %s from travel engine", s.Type)
		}
	}
}
