package timer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/manav03panchal/timesheet/internal/billing"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/parser"
)

// Styles for the watch display.
var (
	elapsedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")) // Purple

	runningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981")) // Green

	stoppedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B")) // Yellow

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#6B7280")) // Gray
)

// WatchResult is how a watch session ended.
type WatchResult int

const (
	WatchDetached WatchResult = iota
	WatchStopped
)

// String returns a string representation of the result.
func (r WatchResult) String() string {
	if r == WatchStopped {
		return "stopped"
	}
	return "detached"
}

// Display renders the live counter.
type Display struct {
	Writer   io.Writer
	UseColor bool
}

// NewDisplay creates a display on stdout.
func NewDisplay() *Display {
	return &Display{Writer: os.Stdout, UseColor: true}
}

func (d *Display) style(s lipgloss.Style, text string) string {
	if d.UseColor {
		return s.Render(text)
	}
	return text
}

// Render returns the counter screen for an entry. Lines end in \r\n so the
// output is correct in raw terminal mode.
func (d *Display) Render(e *model.TimeEntry, elapsed int64) string {
	var b strings.Builder

	if e.Running {
		b.WriteString(d.style(runningStyle, "RUNNING"))
	} else {
		b.WriteString(d.style(stoppedStyle, "STOPPED"))
	}
	b.WriteString("  " + entryLabel(e) + "\r\n\r\n")

	b.WriteString(d.style(elapsedStyle, parser.FormatDuration(elapsed)))
	b.WriteString(fmt.Sprintf("  (%s h billable)\r\n\r\n", billing.FormatHours(billing.ConvertBillingHours(elapsed), "")))

	if e.Running {
		b.WriteString(d.style(hintStyle, "Press S to stop the timer, Q to detach"))
	}
	return b.String()
}

func entryLabel(e *model.TimeEntry) string {
	parts := []string{e.Client}
	if e.ProjectCode != "" {
		parts = append(parts, e.ProjectCode)
	}
	if e.TaskCode != "" {
		parts = append(parts, e.TaskCode)
	}
	label := strings.Join(parts, "/")
	if e.Description != "" {
		label += " " + e.Description
	}
	return label
}

// ClearScreen clears the terminal screen.
func (d *Display) ClearScreen() {
	fmt.Fprint(d.Writer, "\033[H\033[2J")
}

// Watch shows a live elapsed counter for one entry. Pressing s stops the
// timer through the service; q, Ctrl+C or a signal detach and leave it
// running.
type Watch struct {
	svc      *Service
	key      string
	display  *Display
	in       io.Reader
	interval time.Duration
}

// NewWatch creates a watch over stdin and stdout.
func NewWatch(svc *Service, key string) *Watch {
	return &Watch{
		svc:      svc,
		key:      key,
		display:  NewDisplay(),
		in:       os.Stdin,
		interval: time.Second,
	}
}

// SetDisplay replaces the display.
func (w *Watch) SetDisplay(d *Display) { w.display = d }

// SetInput replaces the keyboard source.
func (w *Watch) SetInput(r io.Reader) { w.in = r }

// SetInterval sets the refresh interval.
func (w *Watch) SetInterval(d time.Duration) { w.interval = d }

// Run blocks until the timer is stopped, the user detaches or ctx ends.
func (w *Watch) Run(ctx context.Context) (WatchResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if f, ok := w.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		oldState, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return WatchDetached, err
		}
		defer term.Restore(int(f.Fd()), oldState)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	keys := make(chan byte, 4)
	go w.listenKeyboard(ctx, keys)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	running, err := w.render()
	if err != nil {
		return WatchDetached, err
	}
	if !running {
		return WatchStopped, nil
	}

	for {
		select {
		case <-ctx.Done():
			return WatchDetached, nil

		case <-sigCh:
			return WatchDetached, nil

		case k := <-keys:
			switch k {
			case 's', 'S':
				if _, err := w.svc.Stop(w.key); err != nil {
					return WatchDetached, err
				}
				_, err := w.render()
				return WatchStopped, err
			case 'q', 'Q', 3: // Q or Ctrl+C
				return WatchDetached, nil
			}

		case <-ticker.C:
			running, err := w.render()
			if err != nil {
				return WatchDetached, err
			}
			if !running {
				// The entry is no longer running.
				return WatchStopped, nil
			}
		}
	}
}

// render draws the current state and reports whether the entry still runs.
func (w *Watch) render() (bool, error) {
	entry, err := w.svc.load(w.key)
	if err != nil {
		return false, err
	}
	elapsed, err := w.svc.CurrentElapsed(w.key)
	if err != nil {
		return false, err
	}
	w.display.ClearScreen()
	_, err = io.WriteString(w.display.Writer, w.display.Render(entry, elapsed))
	return entry.Running, err
}

// listenKeyboard forwards key presses until ctx ends or input closes.
func (w *Watch) listenKeyboard(ctx context.Context, keys chan<- byte) {
	buf := make([]byte, 1)
	f, isFile := w.in.(*os.File)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if isFile {
			_ = f.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		}
		n, err := w.in.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			return
		}
		if n == 0 {
			continue
		}
		select {
		case keys <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}
