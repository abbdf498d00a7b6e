package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/model"
)

// startCmd represents the start command.
var startCmd = &cobra.Command{
	Use:     "start [ENTRY]",
	Aliases: []string{"s", "on", "resume"},
	Short:   "Start the timer on an entry",
	Long: `Start the timer on an existing entry.

ENTRY is an entry id or a unique prefix of at least four characters. Without
ENTRY the most recently created entry of today is started. Any other running
entry is stopped first, so at most one timer runs.

With --new a fresh entry is created from the add options and started.

Examples:
  timesheet start 1234abcd
  timesheet start
  timesheet start --new --client Acme --project PRJ-1 --desc "Standup"`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeEntries,
	RunE:              runStart,
}

var startFlagNew bool

func init() {
	addEntryFlags(startCmd)
	startCmd.Flags().BoolVarP(&startFlagNew, "new", "n", false, "Create a new entry and start it")

	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}
	if startFlagNew {
		if len(args) > 0 {
			return tserrors.NewUserError("ENTRY and --new cannot be combined", "Drop ENTRY to start a new entry")
		}
		return addEntry(true)
	}

	var entry *model.TimeEntry
	if len(args) > 0 {
		e, err := ctx.Sheet.Resolve(args[0])
		if err != nil {
			return err
		}
		entry = e
	} else {
		today, err := ctx.Sheet.Day(ctx.Sheet.Today())
		if err != nil {
			return err
		}
		if len(today) == 0 {
			return fmt.Errorf("no entries today: %w", tserrors.ErrEntryNotFound)
		}
		entry = today[0]
	}

	res, err := ctx.Timer.Start(entry.Key)
	if err != nil {
		return err
	}
	row, err := entryRow(res.Started)
	if err != nil {
		return err
	}
	return ctx.Renderer.EntryChanged("started", row, stoppedRows(res.Stopped))
}
