package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/blackwell-systems/timewise/internal/model"
)

// Config is the top-level timewise configuration.
type Config struct {
	CalendarID  string                `mapstructure:"calendar_id"`
	ICSPaths    []string              `mapstructure:"ics_paths"`
	Preferences model.UserPreferences `mapstructure:"preferences"`
	Thresholds  Thresholds            `mapstructure:"thresholds"`
	Monitor     Monitor               `mapstructure:"monitor"`
	Flight      Endpoint              `mapstructure:"flight"`
	Traffic     Endpoint              `mapstructure:"traffic"`
	AI          AIEndpoint            `mapstructure:"ai"`
	Output      Output                `mapstructure:"output"`
}

// Thresholds holds the tunable heuristic constants used by detectors and the
// policy gate.
type Thresholds struct {
	// ImportantMeetingMinutes and ImportantAttendees define which events the
	// energy detector considers worth moving.
	ImportantMeetingMinutes int `mapstructure:"important_meeting_minutes"`
	ImportantAttendees      int `mapstructure:"important_attendees"`

	// BurnoutSuggestRisk is the burnout score (of 10) at which break
	// suggestions are emitted; BurnoutCriticalRisk is the band where they
	// become auto-approve eligible.
	BurnoutSuggestRisk  float64 `mapstructure:"burnout_suggest_risk"`
	BurnoutCriticalRisk float64 `mapstructure:"burnout_critical_risk"`

	// AutoApproveConfidence is the policy gate's confidence floor;
	// MonitorApplyConfidence is the stricter bar the background monitor uses.
	AutoApproveConfidence  float64 `mapstructure:"auto_approve_confidence"`
	MonitorApplyConfidence float64 `mapstructure:"monitor_apply_confidence"`

	// PostArrivalWindowHours is how long after a flight's arrival events are
	// considered at risk. Delay bands split remote-attendance advice from
	// full reschedules.
	PostArrivalWindowHours int `mapstructure:"post_arrival_window_hours"`
	MinorDelayMinutes      int `mapstructure:"minor_delay_minutes"`
	MajorDelayMinutes      int `mapstructure:"major_delay_minutes"`

	// TrafficFactorLimit is the live/normal commute ratio above which a
	// departure buffer is suggested.
	TrafficFactorLimit float64 `mapstructure:"traffic_factor_limit"`
}

// Monitor configures the continuous background monitor.
type Monitor struct {
	Interval      string `mapstructure:"interval"`
	LookaheadDays int    `mapstructure:"lookahead_days"`
	FlightNumber  string `mapstructure:"flight_number"`
	CommuteRoute  string `mapstructure:"commute_route"`
}

// Endpoint configures an external HTTP collaborator.
type Endpoint struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// AIEndpoint configures the text-generation collaborator.
type AIEndpoint struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. A missing config file is
// not an error: the documented defaults are substituted and used as-is.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("calendar_id", DefaultCalendarID)
	v.SetDefault("preferences.workday_start", DefaultPreferences.WorkdayStart)
	v.SetDefault("preferences.workday_end", DefaultPreferences.WorkdayEnd)
	v.SetDefault("preferences.high_energy_windows", DefaultPreferences.HighEnergyWindows)
	v.SetDefault("preferences.low_energy_windows", DefaultPreferences.LowEnergyWindows)
	v.SetDefault("preferences.preferred_meeting_minutes", DefaultPreferences.PreferredMeetingMinutes)
	v.SetDefault("preferences.buffer_minutes", DefaultPreferences.BufferMinutes)
	v.SetDefault("preferences.automation_level", string(DefaultPreferences.AutomationLevel))
	v.SetDefault("preferences.notify_on_apply", DefaultPreferences.NotifyOnApply)
	v.SetDefault("preferences.notify_on_alert", DefaultPreferences.NotifyOnAlert)
	v.SetDefault("thresholds.important_meeting_minutes", DefaultThresholds.ImportantMeetingMinutes)
	v.SetDefault("thresholds.important_attendees", DefaultThresholds.ImportantAttendees)
	v.SetDefault("thresholds.burnout_suggest_risk", DefaultThresholds.BurnoutSuggestRisk)
	v.SetDefault("thresholds.burnout_critical_risk", DefaultThresholds.BurnoutCriticalRisk)
	v.SetDefault("thresholds.auto_approve_confidence", DefaultThresholds.AutoApproveConfidence)
	v.SetDefault("thresholds.monitor_apply_confidence", DefaultThresholds.MonitorApplyConfidence)
	v.SetDefault("thresholds.post_arrival_window_hours", DefaultThresholds.PostArrivalWindowHours)
	v.SetDefault("thresholds.minor_delay_minutes", DefaultThresholds.MinorDelayMinutes)
	v.SetDefault("thresholds.major_delay_minutes", DefaultThresholds.MajorDelayMinutes)
	v.SetDefault("thresholds.traffic_factor_limit", DefaultThresholds.TrafficFactorLimit)
	v.SetDefault("monitor.interval", DefaultMonitorInterval)
	v.SetDefault("monitor.lookahead_days", DefaultLookaheadDays)
	v.SetDefault("output.color", true)
	v.SetDefault("output.width", 80)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	for i, p := range cfg.ICSPaths {
		cfg.ICSPaths[i] = expandPath(p)
	}

	// Invalid preferences fall back to the documented defaults rather than
	// failing the load.
	if err := validate.Struct(cfg.Preferences); err != nil {
		slog.Info("preferences invalid, using defaults", "err", err)
		cfg.Preferences = DefaultPreferences
	}

	return &cfg, nil
}

var validate = validator.New()

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
