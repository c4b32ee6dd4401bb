// Package config provides configuration loading and defaults for timewise.
package config

import "github.com/blackwell-systems/timewise/internal/model"

// DefaultConfigDir is the default location for timewise configuration.
const DefaultConfigDir = "~/.config/timewise"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "timewise.db"

// DefaultCalendarID identifies the user's primary calendar at the collaborator.
const DefaultCalendarID = "primary"

// DefaultPreferences are the documented fallback preferences used when the
// user has never configured any. Substituting them is not an error and is
// logged at info level only.
var DefaultPreferences = model.UserPreferences{
	WorkdayStart:            "09:00",
	WorkdayEnd:              "17:00",
	HighEnergyWindows:       []string{"09:00-11:00"},
	LowEnergyWindows:        []string{"13:00-15:00"},
	PreferredMeetingMinutes: 30,
	BufferMinutes:           15,
	AutomationLevel:         model.AutomationModerate,
	NotifyOnApply:           true,
	NotifyOnAlert:           true,
}

// DefaultThresholds are the heuristic constants driving detection and the
// policy gate. They were tuned by observation, not derivation; treat them as
// reasonable defaults rather than business rules.
var DefaultThresholds = Thresholds{
	ImportantMeetingMinutes: 30,
	ImportantAttendees:      2,
	BurnoutSuggestRisk:      6,
	BurnoutCriticalRisk:     8,
	AutoApproveConfidence:   0.8,
	MonitorApplyConfidence:  0.8,
	PostArrivalWindowHours:  1,
	MinorDelayMinutes:       15,
	MajorDelayMinutes:       30,
	TrafficFactorLimit:      1.5,
}

// DefaultMonitorInterval is the continuous monitor's check interval.
const DefaultMonitorInterval = "30m"

// DefaultLookaheadDays is how far ahead of now an optimization pass loads
// events.
const DefaultLookaheadDays = 7
