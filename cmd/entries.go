package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/output"
	"github.com/manav03panchal/timesheet/internal/parser"
	"github.com/manav03panchal/timesheet/internal/timesheet"
	"github.com/manav03panchal/timesheet/internal/tui"
)

// Entries command flags.
var (
	entriesFlagFrom string
	entriesFlagTo   string
	deleteFlagYes   bool
)

// entriesCmd represents the entries command.
var entriesCmd = &cobra.Command{
	Use:     "entries [DATE]",
	Aliases: []string{"ls", "list", "e"},
	Short:   "List time entries",
	Long: `List the entries of a day, newest first, or of a date range with
--from and --to, oldest first.

DATE accepts YYYY-MM-DD or natural language such as "yesterday" or
"last monday".

Examples:
  timesheet entries
  timesheet entries yesterday
  timesheet entries --from "last sunday" --to saturday`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeDays,
	RunE:              runEntries,
}

// entriesEditCmd edits an entry.
var entriesEditCmd = &cobra.Command{
	Use:   "edit ENTRY",
	Short: "Edit a time entry",
	Long: `Edit the fields of an entry. Only the flags given are changed.

Setting the duration of a running entry makes the new value its base and
restarts the interval from now.

Examples:
  timesheet entries edit 1234abcd --desc "Code review"
  timesheet entries edit 1234abcd --duration 2h --date yesterday`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeEntries,
	RunE:              runEntriesEdit,
}

// entriesDeleteCmd deletes an entry.
var entriesDeleteCmd = &cobra.Command{
	Use:               "delete ENTRY",
	Aliases:           []string{"rm"},
	Short:             "Delete a time entry",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeEntries,
	RunE:              runEntriesDelete,
}

func init() {
	entriesCmd.Flags().StringVar(&entriesFlagFrom, "from", "", "Range start date")
	entriesCmd.Flags().StringVar(&entriesFlagTo, "to", "", "Range end date (default today)")

	addEntryFlags(entriesEditCmd)
	entriesDeleteCmd.Flags().BoolVarP(&deleteFlagYes, "yes", "y", false, "Do not ask for confirmation")

	entriesCmd.AddCommand(entriesEditCmd)
	entriesCmd.AddCommand(entriesDeleteCmd)
	rootCmd.AddCommand(entriesCmd)
}

func runEntries(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}

	var (
		entries []*model.TimeEntry
		title   string
		err     error
	)
	if entriesFlagFrom != "" || entriesFlagTo != "" {
		from, to, perr := parser.ParseDateRange(entriesFlagFrom, entriesFlagTo, now())
		if perr != nil {
			return perr
		}
		entries, err = ctx.Sheet.Range(from, to)
		title = fmt.Sprintf("%s to %s", output.FormatDate(from), output.FormatDate(to))
	} else {
		var input string
		if len(args) > 0 {
			input = args[0]
		}
		date, perr := parseDate(input)
		if perr != nil {
			return perr
		}
		entries, err = ctx.Sheet.Day(date)
		title = output.FormatDay(date)
	}
	if err != nil {
		return err
	}

	rows, err := entryRows(entries)
	if err != nil {
		return err
	}
	return ctx.Renderer.Entries(output.EntriesView{
		Title:        title,
		Rows:         rows,
		ShowComments: showComments(),
		DecimalMark:  ctx.DecimalMark(),
	})
}

func runEntriesEdit(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}

	patch := timesheet.EntryPatch{
		Client:       stringFlag(cmd, "client"),
		ProjectCode:  stringFlag(cmd, "project"),
		TaskCode:     stringFlag(cmd, "task"),
		Description:  stringFlag(cmd, "desc"),
		Comments:     stringFlag(cmd, "comments"),
		WorkLocation: stringFlag(cmd, "location"),
		Duration:     stringFlag(cmd, "duration"),
	}
	if cmd.Flags().Changed("date") {
		date, err := parseDate(entryFlagDate)
		if err != nil {
			return err
		}
		patch.Date = &date
	}
	if patch.Empty() {
		return tserrors.NewUserError("nothing to change",
			"Pass at least one of --client, --project, --task, --desc, --comments, --location, --duration or --date")
	}

	target, err := ctx.Sheet.Resolve(args[0])
	if err != nil {
		return err
	}
	entry, err := ctx.Sheet.Edit(target.Key, patch)
	if err != nil {
		return err
	}
	row, err := entryRow(entry)
	if err != nil {
		return err
	}
	return ctx.Renderer.EntryChanged("updated", row, nil)
}

func runEntriesDelete(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}

	target, err := ctx.Sheet.Resolve(args[0])
	if err != nil {
		return err
	}
	if !deleteFlagYes && isInteractive() && !ctx.IsJSON() {
		ok, err := tui.Confirm(fmt.Sprintf("Delete entry %s (%s)?", target.ShortID(), target.Client))
		if err != nil {
			return err
		}
		if !ok {
			return ctx.Renderer.Message(output.LevelInfo, "Cancelled")
		}
	}
	row := output.EntryRow{Entry: target, Seconds: target.DurationSeconds}
	if err := ctx.Sheet.Delete(target.Key); err != nil {
		return err
	}
	return ctx.Renderer.EntryChanged("deleted", row, nil)
}
