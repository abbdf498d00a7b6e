package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/timesheet/internal/output"
)

// todayCmd represents the today command.
var todayCmd = &cobra.Command{
	Use:     "today",
	Aliases: []string{"t", "td"},
	Short:   "Show today's entries",
	Long: `Display today's entries, newest first, with the running timer counted
up to now and the day's billable hours.

Examples:
  timesheet today
  timesheet t -f json`,
	Args: cobra.NoArgs,
	RunE: runToday,
}

func init() {
	rootCmd.AddCommand(todayCmd)
}

func runToday(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}

	today := ctx.Sheet.Today()
	entries, err := ctx.Sheet.Day(today)
	if err != nil {
		return err
	}
	rows, err := entryRows(entries)
	if err != nil {
		return err
	}
	return ctx.Renderer.Entries(output.EntriesView{
		Title:        output.FormatDay(today),
		Rows:         rows,
		ShowComments: showComments(),
		DecimalMark:  ctx.DecimalMark(),
	})
}
