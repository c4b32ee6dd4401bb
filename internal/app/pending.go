package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/timewise/internal/apply"
	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/output"
	"github.com/blackwell-systems/timewise/internal/store"
	"github.com/blackwell-systems/timewise/internal/suggest"
)

var pendingJSON bool

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List, approve, or reject queued suggestions",
	Long: `Pending shows every suggestion waiting for a decision, best first.
Approve applies the change to the calendar; reject discards it. IDs may
be abbreviated to any unique prefix.`,
	RunE: runPendingList,
}

var approveCmd = &cobra.Command{
	Use:   "approve <id>...",
	Short: "Apply queued suggestions to the calendar",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runApprove,
}

var rejectCmd = &cobra.Command{
	Use:   "reject <id>...",
	Short: "Discard queued suggestions without applying them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReject,
}

func init() {
	pendingCmd.Flags().BoolVar(&pendingJSON, "json", false, "Output as JSON")
	pendingCmd.AddCommand(approveCmd)
	pendingCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(pendingCmd)
}

func runPendingList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExpireBefore(time.Now().Add(-pendingTTL)); err != nil {
		return fmt.Errorf("expiring stale suggestions: %w", err)
	}

	pending, err := db.Pending()
	if err != nil {
		return fmt.Errorf("reading queue: %w", err)
	}

	if pendingJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pending)
	}

	fmt.Println(output.Section("Pending Suggestions"))
	fmt.Println()
	if len(pending) == 0 {
		fmt.Println(" Queue is empty.")
		fmt.Println()
		return nil
	}

	output.SuggestionTable(pending).Print()
	fmt.Println()
	for _, s := range pending {
		if tr := output.FormatTimeRange(s.ProposedStart, s.ProposedEnd); tr != "-" {
			fmt.Printf(" %s %s\n", output.StyleMuted.Render(shortLabel(s)+":"), tr)
		}
	}
	fmt.Println()
	fmt.Println(output.StyleMuted.Render(" timewise pending approve <id>   timewise pending reject <id>"))
	fmt.Println()
	return nil
}

func runApprove(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	applier := apply.New(db, buildCalendar(cfg), cfg.CalendarID)

	for _, arg := range args {
		id, err := resolvePendingID(db, arg)
		if err != nil {
			return err
		}
		s, err := applier.ApplyPending(cmd.Context(), id)
		if errors.Is(err, store.ErrNotQueued) {
			fmt.Printf(" %s %s\n", output.StyleMuted.Render("·"), "already resolved: "+arg)
			continue
		}
		if err != nil {
			return fmt.Errorf("applying %s: %w", arg, err)
		}
		fmt.Printf(" %s %s\n", output.StyleSuccess.Render("✓"), s.Title)
		if tr := output.FormatTimeRange(s.ProposedStart, s.ProposedEnd); tr != "-" {
			fmt.Printf("   %s\n", output.StyleMuted.Render(tr))
		}
	}
	return nil
}

func runReject(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// Reject never touches the calendar, so no collaborator is wired.
	applier := apply.New(db, nil, "")

	for _, arg := range args {
		id, err := resolvePendingID(db, arg)
		if err != nil {
			return err
		}
		if err := applier.Reject(id); err != nil {
			if errors.Is(err, store.ErrNotQueued) {
				fmt.Printf(" %s %s\n", output.StyleMuted.Render("·"), "already resolved: "+arg)
				continue
			}
			return fmt.Errorf("rejecting %s: %w", arg, err)
		}
		fmt.Printf(" %s rejected %s\n", output.StyleError.Render("✗"), arg)
	}
	return nil
}

// resolvePendingID expands an abbreviated suggestion ID to the full one.
// Exact IDs pass through; prefixes must match exactly one pending entry.
func resolvePendingID(db *store.DB, arg string) (string, error) {
	pending, err := db.Pending()
	if err != nil {
		return "", fmt.Errorf("reading queue: %w", err)
	}

	var matches []string
	for _, s := range pending {
		if s.ID == arg {
			return arg, nil
		}
		if strings.HasPrefix(s.ID, arg) {
			matches = append(matches, s.ID)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		// Let the engine report ErrNotQueued so resolved IDs read as no-ops.
		return arg, nil
	default:
		return "", fmt.Errorf("id %q is ambiguous (%d matches)", arg, len(matches))
	}
}

// shortLabel pairs the abbreviated ID with the suggestion type for the
// per-row detail lines under the table.
func shortLabel(s suggest.Suggestion) string {
	if i := strings.IndexByte(s.ID, '-'); i > 0 {
		return s.ID[:i]
	}
	return s.ID
}
