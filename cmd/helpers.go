package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/output"
	"github.com/manav03panchal/timesheet/internal/parser"
)

// openStore opens the record store and reconciles the running timer.
func openStore() error {
	if err := ctx.Open(); err != nil {
		return err
	}
	res, err := ctx.Timer.Reconcile()
	if err != nil {
		return err
	}
	if res.ClearedStale || res.Adopted || len(res.Stopped) > 0 {
		logging.Info("running timer reconciled",
			"cleared_stale", res.ClearedStale, "adopted", res.Adopted, "stopped", len(res.Stopped))
	}
	return nil
}

// now returns the current time in the entry zone.
func now() time.Time {
	return ctx.Clock.Now().In(ctx.Location)
}

// parseDate parses a --date style flag. Empty means today.
func parseDate(input string) (time.Time, error) {
	return parser.ParseDate(input, now())
}

// entryRow pairs an entry with its effective duration now.
func entryRow(e *model.TimeEntry) (output.EntryRow, error) {
	secs := e.DurationSeconds
	if e.Running {
		var err error
		if secs, err = ctx.Timer.CurrentElapsed(e.Key); err != nil {
			return output.EntryRow{}, err
		}
	}
	return output.EntryRow{Entry: e, Seconds: secs}, nil
}

func entryRows(entries []*model.TimeEntry) ([]output.EntryRow, error) {
	rows := make([]output.EntryRow, 0, len(entries))
	for _, e := range entries {
		r, err := entryRow(e)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// stoppedRows renders entries stopped as a side effect. Their duration is
// already folded in.
func stoppedRows(entries []*model.TimeEntry) []output.EntryRow {
	rows := make([]output.EntryRow, len(entries))
	for i, e := range entries {
		rows[i] = output.EntryRow{Entry: e, Seconds: e.DurationSeconds}
	}
	return rows
}

// targetEntry resolves args[0], or falls back to the running entry.
func targetEntry(args []string) (*model.TimeEntry, error) {
	if len(args) > 0 {
		return ctx.Sheet.Resolve(args[0])
	}
	running, _, err := ctx.Timer.Running()
	if err != nil {
		return nil, err
	}
	if running == nil {
		return nil, tserrors.ErrNoRunningTimer
	}
	return running, nil
}

// isInteractive reports whether stdin and stdout are terminals.
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// stringFlag returns a pointer to a string flag's value when it was set.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// showComments reports whether listings include comments.
func showComments() bool {
	return ctx.Settings.Bool(model.SettingShowComments, false)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	if strings.HasSuffix(word, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(word, "y"))
	}
	return fmt.Sprintf("%d %ss", n, word)
}
