// Package app contains the Cobra command tree for timewise.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/timewise/internal/ai"
	"github.com/blackwell-systems/timewise/internal/calendar"
	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/output"
	"github.com/blackwell-systems/timewise/internal/store"
	"github.com/blackwell-systems/timewise/internal/travel"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "timewise",
	Short: "Calendar optimization from the command line",
	Long: `timewise reads your calendar, detects scheduling problems (missing
buffers, fragmented focus time, meetings fighting your energy curve,
burnout-level load, travel disruptions), and turns them into ranked
suggestions. High-confidence fixes apply automatically under your
automation level; the rest wait in a pending queue for approval.

Run 'timewise optimize' for a one-off pass, or 'timewise monitor' to
keep watching in the background.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if flagNoColor || flagJSON || !isatty.IsTerminal(os.Stdout.Fd()) {
			output.SetNoColor(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("timewise", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  optimize  Run one optimization pass over the upcoming week")
		fmt.Println("  pending   List, approve, or reject queued suggestions")
		fmt.Println("  monitor   Watch the calendar continuously and react to changes")
		fmt.Println("  stats     Show cumulative impact and recent run history")
		fmt.Println("  events    List the events in the optimization window")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/timewise/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

// openStore opens the SQLite database at its configured location.
func openStore() (*store.DB, error) {
	db, err := store.Open(config.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return db, nil
}

// buildCalendar picks the event source: the first configured ICS file
// wrapped in the retrying boundary, or an empty in-memory calendar when
// nothing is configured.
func buildCalendar(cfg *config.Config) calendar.Collaborator {
	if len(cfg.ICSPaths) > 0 {
		if len(cfg.ICSPaths) > 1 {
			slog.Warn("multiple ics_paths configured, using the first", "path", cfg.ICSPaths[0])
		}
		return calendar.WithRetry(calendar.NewICS(cfg.ICSPaths[0]))
	}
	slog.Warn("no ics_paths configured, starting with an empty in-memory calendar")
	return calendar.NewMemory()
}

// buildCollector wires the configured travel collaborators. Returns nil when
// neither endpoint is configured.
func buildCollector(cfg *config.Config) (*travel.Collector, error) {
	var flights travel.FlightSource
	var traffic travel.TrafficSource

	if cfg.Flight.BaseURL != "" {
		c, err := travel.NewFlightClient(cfg.Flight)
		if err != nil {
			return nil, fmt.Errorf("flight client: %w", err)
		}
		flights = c
	}
	if cfg.Traffic.BaseURL != "" {
		c, err := travel.NewTrafficClient(cfg.Traffic)
		if err != nil {
			return nil, fmt.Errorf("traffic client: %w", err)
		}
		traffic = c
	}

	if flights == nil && traffic == nil {
		return nil, nil
	}
	return travel.NewCollector(flights, traffic), nil
}

// buildGenerator returns the configured summary generator. The check keeps
// the interface genuinely nil when no API key is set, so callers fall back
// to the local template.
func buildGenerator(cfg *config.Config) ai.Generator {
	if c := ai.NewClient(cfg.AI); c != nil {
		return c
	}
	return nil
}
