package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/detect"
	"github.com/blackwell-systems/timewise/internal/optimizer"
	"github.com/blackwell-systems/timewise/internal/output"
	"github.com/blackwell-systems/timewise/internal/store"
)

// pendingTTL is how long a queued suggestion stays actionable before it
// expires. A week-old suggestion refers to a schedule that no longer exists.
const pendingTTL = 7 * 24 * time.Hour

var optimizeJSON bool

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run one optimization pass over the upcoming week",
	Long: `Optimize loads the upcoming week of events, runs every detector over
the schedule, ranks the findings, and applies whatever the automation
level allows. Everything else lands in the pending queue for
'timewise pending'.`,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().BoolVar(&optimizeJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// Stale queue entries refer to a schedule that has moved on.
	if _, err := db.ExpireBefore(time.Now().Add(-pendingTTL)); err != nil {
		return fmt.Errorf("expiring stale suggestions: %w", err)
	}

	collector, err := buildCollector(cfg)
	if err != nil {
		return err
	}

	opt := optimizer.New(cfg, db, buildCalendar(cfg), detect.NewEngine(), collector, buildGenerator(cfg))
	report, err := opt.RunFull(cmd.Context(), store.TriggerManual)
	if err != nil {
		return fmt.Errorf("optimization pass: %w", err)
	}

	if optimizeJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	renderReport(report)
	return nil
}

func renderReport(r *optimizer.Report) {
	fmt.Println(output.Section("Schedule Health"))
	fmt.Println()
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Events scanned:"),
		output.StyleValue.Render(fmt.Sprintf("%d", r.EventsScanned)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Weekly meeting hours:"),
		output.StyleValue.Render(fmt.Sprintf("%.1f", r.Workload.WeeklyHours)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Meetings per day:"),
		output.StyleValue.Render(fmt.Sprintf("%.1f", r.Workload.MeetingsPerDay)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Focus hours per day:"),
		output.StyleValue.Render(fmt.Sprintf("%.1f", r.Workload.FocusHoursPerDay)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Stress level:"),
		output.FormatScore(r.Workload.StressLevel))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Burnout risk:"),
		output.FormatScore(r.Workload.BurnoutRisk))

	if len(r.AutoApplied) > 0 {
		fmt.Println(output.Section("Applied Automatically"))
		fmt.Println()
		for _, s := range r.AutoApplied {
			fmt.Printf(" %s %s\n", output.StyleSuccess.Render("✓"), s.Title)
			if tr := output.FormatTimeRange(s.ProposedStart, s.ProposedEnd); tr != "-" {
				fmt.Printf("   %s\n", output.StyleMuted.Render(tr))
			}
		}
	}

	if len(r.Queued) > 0 {
		fmt.Println(output.Section("Awaiting Approval"))
		fmt.Println()
		output.SuggestionTable(r.Queued).Print()
		fmt.Println()
		fmt.Println(output.StyleMuted.Render(" Approve with: timewise pending approve <id>"))
	}

	if len(r.AutoApplied) == 0 && len(r.Queued) == 0 && len(r.Suggestions) == 0 {
		fmt.Println()
		fmt.Println(" Nothing to change. Your schedule looks good.")
	}

	if r.Summary != "" {
		fmt.Println(output.Section("Summary"))
		fmt.Println()
		fmt.Printf(" %s\n", r.Summary)
	}
	fmt.Println()
}
