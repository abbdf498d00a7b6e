package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/manav03panchal/timesheet/internal/storage"
)

// PIDFileName is the PID file name inside the state directory.
const PIDFileName = "timesheet.pid"

// Daemon state errors.
var (
	// ErrNotRunning is returned when no live process owns the PID file.
	ErrNotRunning     = errors.New("daemon is not running")
	// ErrAlreadyRunning is returned by Claim when another daemon is alive.
	ErrAlreadyRunning = errors.New("daemon is already running")
)

// PIDFile records which process owns the daemon.
type PIDFile struct {
	path string
}

// NewPIDFile returns a PIDFile for PIDFileName inside dir.
func NewPIDFile(dir string) *PIDFile {
	return &PIDFile{path: filepath.Join(dir, PIDFileName)}
}

// Path returns the PID file path.
func (p *PIDFile) Path() string { return p.path }

// Claim records the current process as the daemon.
func (p *PIDFile) Claim() error {
	return p.WritePID(os.Getpid())
}

// WritePID records pid, creating the state directory when needed.
func (p *PIDFile) WritePID(pid int) error {
	if err := storage.EnsureDirectory(filepath.Dir(p.path)); err != nil {
		return err
	}
	return storage.WriteFileAtomic(p.path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// Read returns the recorded PID, or ErrNotRunning when there is no file.
// The process may be gone; see RunningPID.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return 0, ErrNotRunning
	}
	if err != nil {
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("pid file %s: %w", p.path, err)
	}
	return pid, nil
}

// RunningPID returns the recorded PID when that process is alive, or 0.
func (p *PIDFile) RunningPID() int {
	if pid, err := p.Read(); err == nil && IsProcessRunning(pid) {
		return pid
	}
	return 0
}

func (p *PIDFile) IsRunning() bool { return p.RunningPID() > 0 }

// Remove deletes the PID file. A missing file is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}

// IsProcessRunning probes pid with signal 0.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
