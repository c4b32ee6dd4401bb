// Package store provides SQLite persistence for the suggestion queue,
// run history, and cumulative optimization stats.
package store

import "time"

// Queue statuses. Pending suggestions await a user decision; every other
// status is terminal.
const (
	StatusPending  = "pending"
	StatusApplied  = "applied"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
)

// Run triggers.
const (
	TriggerManual  = "manual"
	TriggerMonitor = "monitor"
)

// Run records a single optimization pass.
type Run struct {
	ID            int64      `json:"id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	TriggeredBy   string     `json:"triggered_by"`
	EventsScanned int        `json:"events_scanned"`
	Generated     int        `json:"generated"`
	AutoApplied   int        `json:"auto_applied"`
	Queued        int        `json:"queued"`
}

// Stats holds the cumulative counters shown by the stats command. All
// counters are monotonic.
type Stats struct {
	TotalGenerated      int64   `json:"total_generated"`
	TotalApplied        int64   `json:"total_applied"`
	TotalRejected       int64   `json:"total_rejected"`
	MinutesSaved        float64 `json:"minutes_saved"`
	BurnoutsPrevented   int64   `json:"burnouts_prevented"`
	FocusHoursProtected float64 `json:"focus_hours_protected"`
}

// Counter names in the stats table.
const (
	statTotalGenerated      = "total_generated"
	statTotalApplied        = "total_applied"
	statTotalRejected       = "total_rejected"
	statMinutesSaved        = "minutes_saved"
	statBurnoutsPrevented   = "burnouts_prevented"
	statFocusHoursProtected = "focus_hours_protected"
)
