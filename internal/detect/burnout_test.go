package detect

import (
	"testing"

	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

func TestBurnout_BelowThresholdSilent(t *testing.T) {
	in := baseInput()
	in.Workload = model.WorkloadAnalysis{BurnoutRisk: 4}

	if out := Burnout(in); len(out) != 0 {
		t.Fatalf("expected no suggestions below threshold, got %d", len(out))
	}
}

func TestBurnout_ElevatedRiskSuggestsBreak(t *testing.T) {
	in := baseInput()
	in.Workload = model.WorkloadAnalysis{BurnoutRisk: 6.5, MeetingsPerDay: 3, WeeklyHours: 30}

	out := Burnout(in)
	if len(out) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(out))
	}
	s := out[0]
	if s.Type != suggest.TypeSuggestBreak {
		t.Errorf("expected suggest_break, got %s", s.Type)
	}
	if s.Priority != PriorityBurnout {
		t.Errorf("expected priority %d, got %d", PriorityBurnout, s.Priority)
	}
	if s.Confidence >= 0.9 {
		t.Errorf("expected sub-critical confidence, got %f", s.Confidence)
	}
	if s.ProposedStart == nil {
		t.Error("expected a proposed break slot")
	}
}

func TestBurnout_CriticalRiskEscalates(t *testing.T) {
	in := baseInput()
	in.Workload = model.WorkloadAnalysis{BurnoutRisk: 9, MeetingsPerDay: 6, WeeklyHours: 50}

	out := Burnout(in)
	if len(out) != 3 {
		t.Fatalf("expected break + consolidation + redistribution, got %d", len(out))
	}
	if out[0].Priority != PriorityBurnoutCritical {
		t.Errorf("expected critical priority %d, got %d", PriorityBurnoutCritical, out[0].Priority)
	}
	if out[0].Confidence < 0.9 {
		t.Errorf("expected critical confidence >=0.9, got %f", out[0].Confidence)
	}
}

func TestBurnout_ExistingBreakSuppressesNewOne(t *testing.T) {
	br := meeting("br", "Recovery break", clock(9, 0), clock(9, 30))
	br.Description = model.HoldTag
	in := baseInput(br)
	in.Workload = model.WorkloadAnalysis{BurnoutRisk: 7}

	if out := Burnout(in); len(out) != 0 {
		t.Fatalf("expected no break while one is scheduled, got %d", len(out))
	}
}

func TestBurnout_BreakLandsInFirstFreeGap(t *testing.T) {
	in := baseInput(
		meeting("a", "one", clock(7, 0), clock(9, 0)),
		meeting("b", "two", clock(9, 10), clock(10, 0)),
	)
	in.Workload = model.WorkloadAnalysis{BurnoutRisk: 7}

	out := Burnout(in)
	if len(out) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(out))
	}
	s := out[0]
	// 09:00-09:10 is too small for a 30-minute break; the slot lands after
	// the second meeting.
	if !s.ProposedStart.Equal(clock(10, 0)) {
		t.Errorf("expected break at 10:00, got %s", s.ProposedStart)
	}
}
