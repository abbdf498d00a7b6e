package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/timesheet/internal/output"
	"github.com/manav03panchal/timesheet/internal/timesheet"
)

// Entry flags shared by add, start --new and entries edit.
var (
	entryFlagClient   string
	entryFlagProject  string
	entryFlagTask     string
	entryFlagDesc     string
	entryFlagComments string
	entryFlagLocation string
	entryFlagDuration string
	entryFlagDate     string
	addFlagStart      bool
)

// addCmd represents the add command.
var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"a", "new"},
	Short:   "Add a time entry",
	Long: `Add a time entry for today or another date.

The duration accepts HH:MM:SS or shorthand such as 1.5, 90m or 1h30m.
With --start the new entry becomes the running timer and any other
running entry is stopped.

Examples:
  timesheet add --client Acme --project PRJ-1 --task DEV --desc "API work"
  timesheet add --client Acme --duration 1h30m --date yesterday
  timesheet add --client Acme --project PRJ-1 --start`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func addEntryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&entryFlagClient, "client", "c", "", "Client name")
	cmd.Flags().StringVarP(&entryFlagProject, "project", "p", "", "Project code")
	cmd.Flags().StringVarP(&entryFlagTask, "task", "t", "", "Task code")
	cmd.Flags().StringVarP(&entryFlagDesc, "desc", "m", "", "Description")
	cmd.Flags().StringVar(&entryFlagComments, "comments", "", "Comments")
	cmd.Flags().StringVar(&entryFlagLocation, "location", "", "Work location (default from settings)")
	cmd.Flags().StringVarP(&entryFlagDuration, "duration", "d", "", "Duration, e.g. 01:30:00 or 1h30m")
	cmd.Flags().StringVar(&entryFlagDate, "date", "", "Entry date (default today)")
}

func init() {
	addEntryFlags(addCmd)
	addCmd.Flags().BoolVarP(&addFlagStart, "start", "s", false, "Start the timer on the new entry")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}
	return addEntry(addFlagStart)
}

// addEntry creates an entry from the shared entry flags, starting it when
// start is set.
func addEntry(start bool) error {
	date, err := parseDate(entryFlagDate)
	if err != nil {
		return err
	}

	entry, err := ctx.Sheet.Add(timesheet.NewEntry{
		Client:       entryFlagClient,
		ProjectCode:  entryFlagProject,
		TaskCode:     entryFlagTask,
		Description:  entryFlagDesc,
		Comments:     entryFlagComments,
		WorkLocation: entryFlagLocation,
		Duration:     entryFlagDuration,
		Date:         date,
	}, false)
	if err != nil {
		return err
	}

	action := "added"
	var stopped []output.EntryRow
	if start {
		res, err := ctx.Timer.Start(entry.Key)
		if err != nil {
			return err
		}
		entry = res.Started
		stopped = stoppedRows(res.Stopped)
		action = "started"
	}

	row, err := entryRow(entry)
	if err != nil {
		return err
	}
	return ctx.Renderer.EntryChanged(action, row, stopped)
}
