package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/timewise/internal/output"
	"github.com/blackwell-systems/timewise/internal/store"
)

var (
	statsJSON bool
	statsRuns int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cumulative impact and recent run history",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().IntVar(&statsRuns, "runs", 10, "Number of recent runs to show")
	rootCmd.AddCommand(statsCmd)
}

// statsReport bundles the counters with the run history for JSON output.
type statsReport struct {
	Stats store.Stats `json:"stats"`
	Runs  []store.Run `json:"runs"`
}

func runStats(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	stats, err := db.GetStats()
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}
	runs, err := db.RecentRuns(statsRuns)
	if err != nil {
		return fmt.Errorf("reading run history: %w", err)
	}

	if statsJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(statsReport{Stats: stats, Runs: runs})
	}

	fmt.Println(output.Section("Optimization Impact"))
	fmt.Println()
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Suggestions generated:"),
		output.StyleValue.Render(fmt.Sprintf("%d", stats.TotalGenerated)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Applied:"),
		output.StyleValue.Render(fmt.Sprintf("%d", stats.TotalApplied)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Rejected:"),
		output.StyleValue.Render(fmt.Sprintf("%d", stats.TotalRejected)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Minutes saved:"),
		output.StyleValue.Render(fmt.Sprintf("%.0f", stats.MinutesSaved)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Focus hours protected:"),
		output.StyleValue.Render(fmt.Sprintf("%.1f", stats.FocusHoursProtected)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Breaks scheduled:"),
		output.StyleValue.Render(fmt.Sprintf("%d", stats.BurnoutsPrevented)))

	fmt.Println(output.Section("Recent Runs"))
	fmt.Println()
	if len(runs) == 0 {
		fmt.Println(" No runs recorded yet. Start with: timewise optimize")
		fmt.Println()
		return nil
	}

	tbl := output.NewTable("WHEN", "TRIGGER", "SCANNED", "GENERATED", "APPLIED", "QUEUED")
	for _, r := range runs {
		tbl.AddRow(
			r.StartedAt.Local().Format("02 Jan 15:04"),
			r.TriggeredBy,
			fmt.Sprintf("%d", r.EventsScanned),
			fmt.Sprintf("%d", r.Generated),
			fmt.Sprintf("%d", r.AutoApplied),
			fmt.Sprintf("%d", r.Queued),
		)
	}
	tbl.Print()
	fmt.Println()
	return nil
}
