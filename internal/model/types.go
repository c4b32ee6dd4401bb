// Package model defines the normalized domain types shared by the
// optimization pipeline: calendar events, user scheduling preferences,
// derived workload metrics, and external travel signals.
package model

import (
	"strings"
	"time"
)

// EventStatus is the confirmation state of a calendar event.
type EventStatus string

const (
	StatusConfirmed EventStatus = "confirmed"
	StatusTentative EventStatus = "tentative"
	StatusCancelled EventStatus = "cancelled"
)

// CalendarEvent is an immutable snapshot of a single calendar event as seen
// by one optimization pass. Instances are owned by the calendar collaborator;
// the pipeline never mutates them in place.
type CalendarEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Attendees   []string    `json:"attendees,omitempty"`
	Status      EventStatus `json:"status"`
}

// HoldTag marks events the optimizer created itself (buffers, breaks).
// Detectors use it to avoid re-flagging their own output on later passes.
const HoldTag = "timewise-hold"

// Duration returns the scheduled length of the event.
func (e CalendarEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// IsHold reports whether the event is an optimizer-created hold block.
func (e CalendarEvent) IsHold() bool {
	return strings.Contains(e.Description, HoldTag)
}

// Valid reports whether the event satisfies the end-after-start invariant.
func (e CalendarEvent) Valid() bool {
	return e.ID != "" && e.End.After(e.Start)
}

// AutomationLevel controls how much the policy gate is allowed to apply
// without user approval.
type AutomationLevel string

const (
	AutomationMinimal    AutomationLevel = "minimal"
	AutomationModerate   AutomationLevel = "moderate"
	AutomationAggressive AutomationLevel = "aggressive"
)

// UserPreferences holds the user's scheduling preferences. A single current
// version exists per user; there is no preference history.
type UserPreferences struct {
	WorkdayStart string `mapstructure:"workday_start" json:"workday_start" validate:"required"`
	WorkdayEnd   string `mapstructure:"workday_end" json:"workday_end" validate:"required"`
	Timezone     string `mapstructure:"timezone" json:"timezone"`

	// Energy windows are time-of-day intervals in "HH:MM-HH:MM" form.
	HighEnergyWindows []string `mapstructure:"high_energy_windows" json:"high_energy_windows"`
	LowEnergyWindows  []string `mapstructure:"low_energy_windows" json:"low_energy_windows"`

	// FocusBlocks are time-of-day ranges reserved for uninterrupted work.
	FocusBlocks []string `mapstructure:"focus_blocks" json:"focus_blocks"`

	PreferredMeetingMinutes int `mapstructure:"preferred_meeting_minutes" json:"preferred_meeting_minutes" validate:"gte=5,lte=480"`
	BufferMinutes           int `mapstructure:"buffer_minutes" json:"buffer_minutes" validate:"gte=0,lte=120"`

	AutomationLevel AutomationLevel `mapstructure:"automation_level" json:"automation_level" validate:"oneof=minimal moderate aggressive"`

	NotifyOnApply bool `mapstructure:"notify_on_apply" json:"notify_on_apply"`
	NotifyOnAlert bool `mapstructure:"notify_on_alert" json:"notify_on_alert"`
}

// Location resolves the preference timezone, falling back to local time.
func (p UserPreferences) Location() *time.Location {
	if p.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// WorkloadAnalysis is derived from the current event set on every
// optimization pass and never persisted long-term.
type WorkloadAnalysis struct {
	WeeklyHours      float64 `json:"weekly_hours"`
	MeetingsPerDay   float64 `json:"meetings_per_day"`
	StressLevel      float64 `json:"stress_level"`       // 1-10
	BurnoutRisk      float64 `json:"burnout_risk"`       // 1-10
	FocusHoursPerDay float64 `json:"focus_hours_per_day"`
}

// FlightState is the reported state of a tracked flight.
type FlightState string

const (
	FlightScheduled FlightState = "scheduled"
	FlightDelayed   FlightState = "delayed"
	FlightCancelled FlightState = "cancelled"
	FlightArrived   FlightState = "arrived"
)

// FlightStatus is an ephemeral travel signal polled from the flight-status
// collaborator.
type FlightStatus struct {
	FlightNumber     string      `json:"flight_number"`
	State            FlightState `json:"state"`
	DelayMinutes     int         `json:"delay_minutes"`
	Reason           string      `json:"reason,omitempty"`
	ScheduledArrival time.Time   `json:"scheduled_arrival"`
}

// Arrival returns the best known arrival time: the scheduled arrival shifted
// by the reported delay.
func (f FlightStatus) Arrival() time.Time {
	return f.ScheduledArrival.Add(time.Duration(f.DelayMinutes) * time.Minute)
}

// RouteConditions describes live commute conditions for a named route.
type RouteConditions struct {
	Route         string  `json:"route"`
	NormalMinutes int     `json:"normal_minutes"`
	LiveMinutes   int     `json:"live_minutes"`
	TrafficFactor float64 `json:"traffic_factor"` // live / normal duration ratio
}

// TravelSignal bundles whatever external travel data is available for one
// optimization pass. Either field may be nil.
type TravelSignal struct {
	Flight *FlightStatus    `json:"flight,omitempty"`
	Route  *RouteConditions `json:"route,omitempty"`
}
