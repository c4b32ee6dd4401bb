// Package detect implements the signal detectors: independent, pure
// analyzers that each scan the event set and preferences for one class of
// scheduling problem and emit typed optimization suggestions.
package detect

import (
	"time"

	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/model"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

// Priority bands per suggestion source. Higher is more urgent.
const (
	PriorityTravel          = 9
	PriorityFocus           = 8
	PriorityEnergy          = 7
	PriorityBuffer          = 6
	PriorityBurnout         = 7
	PriorityBurnoutCritical = 10
)

// Input is the immutable snapshot one optimization pass hands to every
// detector. Detectors never mutate it, which makes parallel fan-out safe
// without locking.
type Input struct {
	Events     []model.CalendarEvent // sorted ascending by start
	Prefs      model.UserPreferences
	Workload   model.WorkloadAnalysis
	Travel     model.TravelSignal
	Thresholds config.Thresholds
	Now        time.Time
}

// Detector is a pure function from a snapshot to zero or more suggestions.
// A detector that finds nothing (or cannot evaluate its signal) returns an
// empty slice, never an error.
type Detector func(in Input) []suggest.Suggestion

// conflictsWith reports whether [start, end) overlaps any event other than
// excludeID.
func conflictsWith(events []model.CalendarEvent, start, end time.Time, excludeID string) bool {
	for _, ev := range events {
		if ev.ID == excludeID {
			continue
		}
		if ev.Start.Before(end) && start.Before(ev.End) {
			return true
		}
	}
	return false
}
