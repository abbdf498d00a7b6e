package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/timesheet/internal/output"
)

// Stop command flags.
var stopFlagAll bool

// stopCmd represents the stop command.
var stopCmd = &cobra.Command{
	Use:     "stop [ENTRY]",
	Aliases: []string{"off", "pause"},
	Short:   "Stop the running timer",
	Long: `Stop the running timer and fold the elapsed time into the entry.

Without ENTRY the running entry is stopped. Stopping an entry that is not
running changes nothing.

Examples:
  timesheet stop
  timesheet stop 1234abcd
  timesheet stop --all`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeEntries,
	RunE:              runStop,
}

func init() {
	stopCmd.Flags().BoolVarP(&stopFlagAll, "all", "a", false, "Stop every running entry")

	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}

	if stopFlagAll {
		stopped, err := ctx.Timer.StopAll()
		if err != nil {
			return err
		}
		rows := stoppedRows(stopped)
		return ctx.Renderer.Result("Stopped "+plural(len(rows), "entry"), output.NewEntriesResponse(rows))
	}

	target, err := targetEntry(args)
	if err != nil {
		return err
	}
	entry, err := ctx.Timer.Stop(target.Key)
	if err != nil {
		return err
	}
	return ctx.Renderer.EntryChanged("stopped", output.EntryRow{Entry: entry, Seconds: entry.DurationSeconds}, nil)
}
