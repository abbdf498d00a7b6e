// Package daemon runs the scheduler as a long-lived process with a PID file
// and a state file.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/scheduler"
	"github.com/manav03panchal/timesheet/internal/storage"
)

// StateFileName is the state file name inside the state directory.
const StateFileName = "daemon.json"

// ShutdownSignals stop a foreground daemon.
var ShutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}

// State is what the running daemon publishes about itself.
type State struct {
	PID       int             `json:"pid"`
	StartedAt time.Time       `json:"started_at"`
	Spec      string          `json:"spec"`
	NextTick  time.Time       `json:"next_tick,omitempty"`
	LastTick  time.Time       `json:"last_tick,omitempty"`
	LastSkip  string          `json:"last_skip,omitempty"`
	Stats     scheduler.Stats `json:"stats"`
}

// Status is the daemon status as seen from another process.
type Status struct {
	Running bool   `json:"running"`
	PID     int    `json:"pid,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
	State   *State `json:"state,omitempty"`
}

// Options configures a Daemon.
type Options struct {
	// Dir holds the PID and state files.
	Dir string
	// StartupWait is how long StartBackground waits before checking the child.
	StartupWait time.Duration
	// KillTimeout is the grace period before Stop escalates to SIGKILL.
	KillTimeout time.Duration
	// LogPath receives the child's stdout and stderr.
	LogPath string
}

// Daemon manages the background daemon process.
type Daemon struct {
	opts    Options
	pidFile *PIDFile
}

// New creates a daemon manager.
func New(opts Options) *Daemon {
	if opts.StartupWait <= 0 {
		opts.StartupWait = 500 * time.Millisecond
	}
	if opts.KillTimeout <= 0 {
		opts.KillTimeout = 5 * time.Second
	}
	return &Daemon{opts: opts, pidFile: NewPIDFile(opts.Dir)}
}

// PIDFile returns the PID file manager.
func (d *Daemon) PIDFile() *PIDFile {
	return d.pidFile
}

func (d *Daemon) statePath() string {
	return filepath.Join(d.opts.Dir, StateFileName)
}

// IsRunning returns true if the daemon is running.
func (d *Daemon) IsRunning() bool {
	return d.pidFile.IsRunning()
}

// Status returns the current daemon status.
func (d *Daemon) Status() *Status {
	status := &Status{}
	pid := d.pidFile.RunningPID()
	if pid == 0 {
		return status
	}
	status.Running = true
	status.PID = pid
	if state, err := d.ReadState(); err == nil {
		status.State = state
		status.Uptime = FormatUptime(time.Since(state.StartedAt))
	}
	return status
}

// Run runs sched in the foreground until ctx is done or a shutdown signal
// arrives. A first tick runs immediately.
func (d *Daemon) Run(ctx context.Context, sched *scheduler.Scheduler) error {
	if d.IsRunning() {
		return ErrAlreadyRunning
	}
	if err := d.pidFile.Claim(); err != nil {
		return err
	}
	defer d.pidFile.Remove()
	defer d.removeState()

	state := &State{PID: os.Getpid(), StartedAt: time.Now(), Spec: sched.Spec()}
	if err := d.writeState(state); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, ShutdownSignals...)
	defer cancel()

	var mu sync.Mutex
	sched.SetObserver(func(status scheduler.TickStatus, stats scheduler.Stats) {
		mu.Lock()
		defer mu.Unlock()
		state.Stats = stats
		state.LastTick = stats.LastTick
		state.NextTick = sched.NextRun()
		if status != scheduler.TickRan {
			state.LastSkip = status.String()
		}
		if err := d.writeState(state); err != nil {
			logging.Warn("failed to write daemon state", logging.KeyError, err)
		}
	})
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	logging.Info("daemon started", "pid", state.PID, "spec", state.Spec)
	go func() {
		if _, err := sched.Tick(ctx); err != nil {
			logging.Warn("initial tick failed", logging.KeyError, err)
		}
	}()

	<-ctx.Done()
	logging.Info("daemon stopping", "reason", context.Cause(ctx).Error())
	return nil
}

// StartBackground re-executes the binary with args in a detached process
// and waits for it to write its PID file.
func (d *Daemon) StartBackground(args []string) (int, error) {
	if pid := d.pidFile.RunningPID(); pid > 0 {
		return pid, ErrAlreadyRunning
	}

	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, args...)
	cmd.Stdin = nil
	if d.opts.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(d.opts.LogPath), 0o755); err == nil {
			if f, err := os.OpenFile(d.opts.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
				defer f.Close()
				cmd.Stdout = f
				cmd.Stderr = f
			}
		}
	}
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}
	go cmd.Wait()

	time.Sleep(d.opts.StartupWait)
	if !d.pidFile.IsRunning() {
		if msg := lastLogError(d.opts.LogPath); msg != "" {
			return 0, fmt.Errorf("daemon failed to start: %s", msg)
		}
		return 0, fmt.Errorf("daemon failed to start (check logs: %s)", d.opts.LogPath)
	}
	return cmd.Process.Pid, nil
}

// lastLogError returns the last line mentioning an error in the final lines
// of the log.
func lastLogError(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	lines := strings.Split(string(data), "\n")
	start := len(lines) - 10
	if start < 0 {
		start = 0
	}
	for i := len(lines) - 1; i >= start; i-- {
		line := strings.TrimSpace(lines[i])
		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") || strings.Contains(lower, "failed to") {
			return line
		}
	}
	return ""
}

// Stop signals the running daemon and waits up to KillTimeout before
// killing it.
func (d *Daemon) Stop() error {
	pid := d.pidFile.RunningPID()
	if pid == 0 {
		return ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(os.Interrupt); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to stop daemon: %w", err)
		}
	}

	deadline := time.Now().Add(d.opts.KillTimeout)
	for IsProcessRunning(pid) {
		if time.Now().After(deadline) {
			logging.Warn("daemon did not exit, killing", "pid", pid)
			process.Kill()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	d.pidFile.Remove()
	d.removeState()
	return nil
}

func (d *Daemon) writeState(state *State) error {
	if err := storage.EnsureDirectory(d.opts.Dir); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return storage.WriteFileAtomic(d.statePath(), data, 0o644)
}

// ReadState reads the state file.
func (d *Daemon) ReadState() (*State, error) {
	data, err := os.ReadFile(d.statePath())
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (d *Daemon) removeState() {
	if err := os.Remove(d.statePath()); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove daemon state file", logging.KeyError, err, "path", d.statePath())
	}
}

// FormatUptime formats a duration as uptime.
func FormatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	if hours > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}
