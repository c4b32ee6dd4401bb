package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/output"
	"github.com/blackwell-systems/timewise/internal/schedule"
)

var (
	eventsJSON bool
	eventsDays int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the events in the optimization window",
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "Output as JSON")
	eventsCmd.Flags().IntVar(&eventsDays, "days", 0, "Days ahead to list (default: configured lookahead)")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	days := eventsDays
	if days <= 0 {
		days = cfg.Monitor.LookaheadDays
	}
	if days <= 0 {
		days = config.DefaultLookaheadDays
	}

	now := time.Now()
	events, err := schedule.LoadEvents(cmd.Context(), buildCalendar(cfg), cfg.CalendarID, now, now.AddDate(0, 0, days))
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}

	if eventsJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	fmt.Println(output.Section(fmt.Sprintf("Next %d Days", days)))
	fmt.Println()
	if len(events) == 0 {
		fmt.Println(" No events in the window.")
		fmt.Println()
		return nil
	}
	output.EventTable(events).Print()
	fmt.Println()
	return nil
}
