package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/monitor"
)

var (
	monitorDaemon   bool
	monitorInterval string
	monitorStop     bool
	monitorQuiet    bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the calendar continuously and react to changes",
	Long: `Run a background monitor that periodically re-checks the schedule.
Travel disruptions with a confident fix are applied automatically;
critical burnout raises a desktop notification; everything else joins
the pending queue.

Examples:
  timewise monitor                  # run in foreground (ctrl-c to stop)
  timewise monitor --daemon         # run in background, write PID file
  timewise monitor --interval 10m   # check every 10 minutes (default: 30m)
  timewise monitor --stop           # stop the background daemon`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	monitorCmd.Flags().StringVar(&monitorInterval, "interval", "", "Check interval as duration string (e.g. 10m, 1h)")
	monitorCmd.Flags().BoolVar(&monitorStop, "stop", false, "Stop a running background daemon")
	monitorCmd.Flags().BoolVar(&monitorQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	rootCmd.AddCommand(monitorCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "monitor.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "monitor.log")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if monitorStop {
		return stopDaemon()
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if monitorInterval != "" {
		if _, err := time.ParseDuration(monitorInterval); err != nil {
			return fmt.Errorf("invalid interval %q: %w", monitorInterval, err)
		}
		cfg.Monitor.Interval = monitorInterval
	}

	if monitorDaemon {
		return runDaemon(cfg)
	}
	return runForeground(cfg)
}

// runForeground runs the monitor in the foreground with live terminal output.
func runForeground(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	collector, err := buildCollector(cfg)
	if err != nil {
		return err
	}

	notifyFn := func(a monitor.Alert) {
		_ = monitor.Notify(a)
		if !monitorQuiet {
			printAlert(a)
		}
	}

	m := monitor.New(cfg, db, buildCalendar(cfg), collector, notifyFn)

	if !monitorQuiet {
		fmt.Printf("timewise watching... (checking every %s)\n", cfg.Monitor.Interval)
	}

	// First check immediately; the cron loop takes over from there.
	m.RunOnce(ctx)
	if err := m.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	m.Stop()
	if !monitorQuiet {
		fmt.Println("\nStopped.")
	}
	return nil
}

// runDaemon sets up PID and log files, then runs the monitor. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(cfg *config.Config) error {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file, remove it.
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	collector, err := buildCollector(cfg)
	if err != nil {
		return err
	}

	writeLog(logFile, "timewise daemon started (PID %d, interval %s)", pid, cfg.Monitor.Interval)

	notifyFn := func(a monitor.Alert) {
		_ = monitor.Notify(a)
		writeLog(logFile, "[%s] %s: %s", a.Level, a.Title, a.Message)
	}

	m := monitor.New(cfg, db, buildCalendar(cfg), collector, notifyFn)
	m.RunOnce(ctx)
	if err := m.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	m.Stop()
	writeLog(logFile, "daemon stopped")
	return nil
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

// writeLog writes a timestamped line to the log file.
func writeLog(f *os.File, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(f, "[%s] %s\n", timestamp, msg)
}

// printAlert formats and prints an alert to the terminal.
func printAlert(a monitor.Alert) {
	timestamp := a.Time.Format("15:04:05")
	icon := alertIcon(a.Level)
	fmt.Printf("[%s] %s %s\n", timestamp, icon, a.Title)
	if a.Message != "" {
		fmt.Printf("         %s\n", a.Message)
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case "critical":
		return "\xf0\x9f\x94\xb4" // red circle
	case "warning":
		return "\xe2\x9a\xa0\xef\xb8\x8f" // warning sign
	case "info":
		return "\xe2\x9c\x93" // check mark
	default:
		return " "
	}
}
