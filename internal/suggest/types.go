// Package suggest defines the optimization suggestion type, the
// priority-by-confidence ranker, and the policy gate that decides which
// suggestions qualify for automatic application.
package suggest

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a suggestion by the action it proposes.
type Type string

const (
	TypeReschedule       Type = "reschedule"
	TypeAddBuffer        Type = "add_buffer"
	TypeBlockFocusTime   Type = "block_focus_time"
	TypeSuggestBreak     Type = "suggest_break"
	TypeTravelAdjustment Type = "travel_adjustment"
	TypeEnergyAlignment  Type = "energy_alignment"
)

// Suggestion is a single typed optimization proposal. Instances are
// immutable after creation; resolution removes them from the pending queue
// rather than mutating them.
type Suggestion struct {
	ID         string  `json:"id"`
	Type       Type    `json:"type"`
	Priority   int     `json:"priority"`   // higher = more urgent
	Confidence float64 `json:"confidence"` // 0.0-1.0

	Title  string `json:"title"`
	Reason string `json:"reason"`
	Impact string `json:"impact,omitempty"`

	// EventID references the affected calendar event, when there is one.
	EventID string `json:"event_id,omitempty"`

	// ProposedStart/ProposedEnd carry the proposed new time range. Both nil
	// for informational suggestions.
	ProposedStart *time.Time `json:"proposed_start,omitempty"`
	ProposedEnd   *time.Time `json:"proposed_end,omitempty"`

	// AutoApprove is computed by the policy gate, never by detectors.
	AutoApprove bool `json:"auto_approve"`

	Source    string    `json:"source"` // emitting detector
	CreatedAt time.Time `json:"created_at"`
}

// New creates a suggestion with a fresh ID.
func New(typ Type, priority int, confidence float64) Suggestion {
	return Suggestion{
		ID:         uuid.NewString(),
		Type:       typ,
		Priority:   priority,
		Confidence: clampConfidence(confidence),
		CreatedAt:  time.Now().UTC(),
	}
}

// Score is the ranking key: priority weighted by confidence.
func (s Suggestion) Score() float64 {
	return float64(s.Priority) * s.Confidence
}

// AltersCommitment reports whether applying the suggestion would move or
// change an event the user scheduled, as opposed to inserting new
// non-meeting blocks.
func (s Suggestion) AltersCommitment() bool {
	switch s.Type {
	case TypeReschedule, TypeBlockFocusTime, TypeEnergyAlignment:
		return true
	}
	return false
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
