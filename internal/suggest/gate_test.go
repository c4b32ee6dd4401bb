package suggest

import (
	"testing"

	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/model"
)

func prefsWith(level model.AutomationLevel) model.UserPreferences {
	p := config.DefaultPreferences
	p.AutomationLevel = level
	return p
}

func TestGate_MinimalApprovesNothing(t *testing.T) {
	th := config.DefaultThresholds
	prefs := prefsWith(model.AutomationMinimal)

	types := []Type{TypeReschedule, TypeAddBuffer, TypeBlockFocusTime,
		TypeSuggestBreak, TypeTravelAdjustment, TypeEnergyAlignment}
	for _, typ := range types {
		s := Suggestion{Type: typ, Confidence: 1.0}
		if Gate(s, prefs, 10, th) {
			t.Errorf("type %s: expected no auto-approval under minimal automation", typ)
		}
	}
}

func TestGate_BufferAndTravelApproveAtThreshold(t *testing.T) {
	th := config.DefaultThresholds
	prefs := prefsWith(model.AutomationModerate)

	for _, typ := range []Type{TypeAddBuffer, TypeTravelAdjustment} {
		if !Gate(Suggestion{Type: typ, Confidence: 0.8}, prefs, 0, th) {
			t.Errorf("type %s: expected auto-approval at confidence 0.8", typ)
		}
		if Gate(Suggestion{Type: typ, Confidence: 0.79}, prefs, 0, th) {
			t.Errorf("type %s: expected queue below threshold", typ)
		}
	}
}

func TestGate_CommitmentAlteringNeedsAggressive(t *testing.T) {
	th := config.DefaultThresholds

	for _, typ := range []Type{TypeReschedule, TypeBlockFocusTime, TypeEnergyAlignment} {
		s := Suggestion{Type: typ, Confidence: 0.95}

		if Gate(s, prefsWith(model.AutomationModerate), 0, th) {
			t.Errorf("type %s: expected approval required under moderate automation", typ)
		}
		if !Gate(s, prefsWith(model.AutomationAggressive), 0, th) {
			t.Errorf("type %s: expected auto-approval under aggressive automation", typ)
		}
		if Gate(Suggestion{Type: typ, Confidence: 0.7}, prefsWith(model.AutomationAggressive), 0, th) {
			t.Errorf("type %s: expected low confidence to block even aggressive", typ)
		}
	}
}

func TestGate_BreakOnlyAtCriticalBurnout(t *testing.T) {
	th := config.DefaultThresholds
	s := Suggestion{Type: TypeSuggestBreak, Confidence: 0.9}

	if Gate(s, prefsWith(model.AutomationModerate), 6, th) {
		t.Error("expected no auto-approval below critical burnout band")
	}
	if !Gate(s, prefsWith(model.AutomationModerate), 9, th) {
		t.Error("expected auto-approval in critical burnout band")
	}
}

func TestGate_BurnoutScenarioAcrossAutomationLevels(t *testing.T) {
	th := config.DefaultThresholds
	s := Suggestion{Type: TypeSuggestBreak, Confidence: 0.85}

	if !Gate(s, prefsWith(model.AutomationAggressive), 9, th) {
		t.Error("expected eligible=true under aggressive at risk 9")
	}
	if Gate(s, prefsWith(model.AutomationMinimal), 9, th) {
		t.Error("expected eligible=false under minimal at risk 9")
	}
}

func TestGate_Deterministic(t *testing.T) {
	th := config.DefaultThresholds
	prefs := prefsWith(model.AutomationModerate)
	s := Suggestion{Type: TypeTravelAdjustment, Confidence: 0.91}

	first := Gate(s, prefs, 3, th)
	for i := 0; i < 50; i++ {
		if Gate(s, prefs, 3, th) != first {
			t.Fatal("expected identical decisions for identical inputs")
		}
	}
}

func TestApplyGate_SetsFlagWithoutReordering(t *testing.T) {
	th := config.DefaultThresholds
	prefs := prefsWith(model.AutomationModerate)

	input := []Suggestion{
		{ID: "buf", Type: TypeAddBuffer, Confidence: 0.85},
		{ID: "move", Type: TypeReschedule, Confidence: 0.95},
	}
	out := ApplyGate(input, prefs, 0, th)

	if !out[0].AutoApprove {
		t.Error("expected buffer suggestion auto-approved")
	}
	if out[1].AutoApprove {
		t.Error("expected reschedule to require approval")
	}
	if input[0].AutoApprove {
		t.Error("expected input untouched")
	}
}
