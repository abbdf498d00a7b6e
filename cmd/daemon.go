package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/timesheet/internal/config"
	"github.com/manav03panchal/timesheet/internal/daemon"
	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/output"
	"github.com/manav03panchal/timesheet/internal/runtime"
)

// Daemon command flags.
var (
	daemonStartFlagForeground bool
	daemonLogsFlagTail        int
)

// daemonCmd represents the daemon command.
var daemonCmd = &cobra.Command{
	Use:     "daemon [command]",
	Aliases: []string{"d", "bg"},
	Short:   "Manage the background daemon",
	Long: `Manage the background daemon that reconciles the running timer and
pushes unsynced records to the sync server on a fixed interval.

Ticks that follow a long gap, such as a laptop waking from sleep, are
skipped.

Examples:
  timesheet daemon start
  timesheet daemon status
  timesheet daemon stop
  timesheet daemon logs --tail 50`,
	RunE: runDaemonStatus,
}

// daemonStartCmd starts the daemon.
var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the background daemon",
	Long: `Start the background daemon.

Examples:
  timesheet daemon start                # Start in background
  timesheet daemon start --foreground   # Run attached to the terminal`,
	Args: cobra.NoArgs,
	RunE: runDaemonStart,
}

// daemonStopCmd stops the daemon.
var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

// daemonStatusCmd shows daemon status.
var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

// daemonLogsCmd shows daemon logs.
var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View daemon logs",
	Long: `Print the last lines of the daemon log file.

Examples:
  timesheet daemon logs
  timesheet daemon logs --tail 100`,
	Args: cobra.NoArgs,
	RunE: runDaemonLogs,
}

func init() {
	daemonStartCmd.Flags().BoolVar(&daemonStartFlagForeground, "foreground", false,
		"Run in foreground (don't daemonize)")
	daemonLogsCmd.Flags().IntVarP(&daemonLogsFlagTail, "tail", "n", 20,
		"Number of lines to show")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonLogsCmd)

	rootCmd.AddCommand(daemonCmd)
}

// daemonLogFile is the structured log written by the daemon.
func daemonLogFile() string {
	if ctx.Config.Log.File != "" {
		return ctx.Config.Log.File
	}
	return config.DefaultLogFile()
}

func newDaemon() *daemon.Daemon {
	dir := config.StateDir()
	return daemon.New(daemon.Options{
		Dir:         dir,
		StartupWait: ctx.Config.Daemon.StartupWait,
		KillTimeout: ctx.Config.Daemon.KillTimeout,
		LogPath:     filepath.Join(dir, "daemon.out"),
	})
}

// runDaemonStart never opens the record store itself: the scheduler opens
// it per tick so CLI commands are not locked out.
func runDaemonStart(cmd *cobra.Command, args []string) error {
	d := newDaemon()

	if !daemonStartFlagForeground {
		childArgs := []string{"daemon", "start", "--foreground"}
		if flagConfig != "" {
			childArgs = append(childArgs, "--config", flagConfig)
		}
		if flagDebug {
			childArgs = append(childArgs, "--debug")
		}
		pid, err := d.StartBackground(childArgs)
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			return ctx.Renderer.Result(fmt.Sprintf("Daemon is already running (PID: %d)", pid),
				map[string]any{"status": "already_running", "pid": pid})
		}
		if err != nil {
			return err
		}
		return ctx.Renderer.Result(fmt.Sprintf("Daemon started (PID: %d)", pid),
			map[string]any{"status": "started", "pid": pid})
	}

	lc := runtime.LogConfig(ctx.Config, flagDebug)
	if !flagDebug {
		lc.Level = "info"
	}
	lc.File = daemonLogFile()
	if !isInteractive() {
		// stderr is daemon.out when detached.
		lc.Output = io.Discard
	}
	if err := logging.Init(lc); err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	if isInteractive() && !ctx.IsJSON() {
		ctx.Formatter.Printf("Daemon running in foreground (log: %s). Press Ctrl+C to stop.\n", lc.File)
	}
	return d.Run(parent, ctx.Scheduler())
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	d := newDaemon()
	status := d.Status()
	if !status.Running {
		return ctx.Renderer.Result("Daemon is not running", map[string]any{"status": "not_running"})
	}
	if err := d.Stop(); err != nil {
		return err
	}
	return ctx.Renderer.Result(fmt.Sprintf("Daemon stopped (was PID: %d)", status.PID),
		map[string]any{"status": "stopped", "pid": status.PID})
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	status := newDaemon().Status()
	return ctx.Renderer.Result(formatDaemonStatus(status), status)
}

func formatDaemonStatus(s *daemon.Status) string {
	var b strings.Builder
	if !s.Running {
		b.WriteString("Daemon: stopped\n\nStart with: timesheet daemon start")
		return b.String()
	}
	fmt.Fprintf(&b, "Daemon:    running\n")
	fmt.Fprintf(&b, "PID:       %d\n", s.PID)
	if s.Uptime != "" {
		fmt.Fprintf(&b, "Uptime:    %s\n", s.Uptime)
	}
	if st := s.State; st != nil {
		fmt.Fprintf(&b, "Schedule:  %s\n", st.Spec)
		if !st.LastTick.IsZero() {
			fmt.Fprintf(&b, "Last tick: %s\n", st.LastTick.Local().Format(time.DateTime))
		}
		if !st.NextTick.IsZero() {
			fmt.Fprintf(&b, "Next tick: %s\n", st.NextTick.Local().Format(time.DateTime))
		}
		fmt.Fprintf(&b, "Ticks:     %d, %d skipped, %d failed", st.Stats.Ticks, st.Stats.Skipped, st.Stats.Failures)
		if st.Stats.LastError != "" {
			fmt.Fprintf(&b, "\nLast error: %s", st.Stats.LastError)
		}
		if st.LastSkip != "" {
			fmt.Fprintf(&b, "\nLast skip: %s", st.LastSkip)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func runDaemonLogs(cmd *cobra.Command, args []string) error {
	path := daemonLogFile()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ctx.Renderer.Message(output.LevelInfo, "No log file found at "+path)
	}
	lines, err := tailFile(path, daemonLogsFlagTail)
	if err != nil {
		return err
	}
	for _, line := range lines {
		ctx.Formatter.Println(line)
	}
	return nil
}

// tailFile reads the last n lines from a file.
func tailFile(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines, scanner.Err()
}
