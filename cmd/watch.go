package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/timesheet/internal/output"
	"github.com/manav03panchal/timesheet/internal/timer"
)

// watchCmd shows a live counter.
var watchCmd = &cobra.Command{
	Use:     "watch [ENTRY]",
	Aliases: []string{"w", "live"},
	Short:   "Show a live counter for the running timer",
	Long: `Show a live elapsed counter for an entry, by default the running one.

Press s to stop the timer, q or Ctrl+C to leave it running and exit.

Examples:
  timesheet watch
  timesheet watch 1234abcd`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeEntries,
	RunE:              runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}
	target, err := targetEntry(args)
	if err != nil {
		return err
	}

	w := timer.NewWatch(ctx.Timer, target.Key)
	w.SetDisplay(&timer.Display{Writer: ctx.Formatter.Writer, UseColor: ctx.Formatter.IsColorEnabled()})

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	res, err := w.Run(parent)
	if err != nil {
		return err
	}
	ctx.Formatter.Println()
	if res == timer.WatchStopped {
		return ctx.Renderer.Message(output.LevelSuccess, "Timer stopped")
	}
	return ctx.Renderer.Message(output.LevelInfo, "Timer still running")
}
