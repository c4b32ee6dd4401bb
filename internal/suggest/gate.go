package suggest

import (
	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/model"
)

// Gate decides whether a suggestion qualifies for automatic application.
// It is a pure function of its inputs; the same suggestion and preferences
// always produce the same decision.
//
// Rules, in order:
//  1. Minimal automation approves nothing; everything queues for review.
//  2. Suggestions that alter existing commitments (reschedule, focus block,
//     energy alignment) auto-approve only under aggressive automation with
//     confidence at or above the threshold.
//  3. Buffer insertions and travel adjustments (objective external causes)
//     auto-approve at or above the confidence threshold.
//  4. Break suggestions auto-approve only in the critical burnout band.
func Gate(s Suggestion, prefs model.UserPreferences, burnoutRisk float64, th config.Thresholds) bool {
	if prefs.AutomationLevel == model.AutomationMinimal {
		return false
	}

	switch {
	case s.AltersCommitment():
		return prefs.AutomationLevel == model.AutomationAggressive &&
			s.Confidence >= th.AutoApproveConfidence
	case s.Type == TypeAddBuffer || s.Type == TypeTravelAdjustment:
		return s.Confidence >= th.AutoApproveConfidence
	case s.Type == TypeSuggestBreak:
		return burnoutRisk >= th.BurnoutCriticalRisk
	}
	return false
}

// ApplyGate returns a copy of the suggestions with AutoApprove computed for
// each.
func ApplyGate(suggestions []Suggestion, prefs model.UserPreferences, burnoutRisk float64, th config.Thresholds) []Suggestion {
	out := make([]Suggestion, len(suggestions))
	for i, s := range suggestions {
		s.AutoApprove = Gate(s, prefs, burnoutRisk, th)
		out[i] = s
	}
	return out
}
