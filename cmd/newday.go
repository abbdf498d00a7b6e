package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/output"
	"github.com/manav03panchal/timesheet/internal/tui"
)

// Newday command flags.
var (
	newdayFlagCheck bool
	newdayFlagYes   bool
)

// newdayResult is the JSON form of a newday run.
type newdayResult struct {
	NewDay       bool   `json:"new_day"`
	Acknowledged bool   `json:"acknowledged"`
	Date         string `json:"date"`
	Stopped      int    `json:"stopped"`
	Copied       int    `json:"copied"`
}

// newdayCmd represents the newday command.
var newdayCmd = &cobra.Command{
	Use:   "newday",
	Short: "Begin a new calendar day",
	Long: `Check whether the calendar day has changed since it was last
acknowledged and, if so, begin the new day: running timers are stopped,
the previous day's entries are copied forward when the copytimesheet
setting is on, and the day is recorded as acknowledged.

On a terminal you are asked to confirm unless --yes is given.

Examples:
  timesheet newday
  timesheet newday --check
  timesheet newday --yes`,
	Args: cobra.NoArgs,
	RunE: runNewday,
}

func init() {
	newdayCmd.Flags().BoolVar(&newdayFlagCheck, "check", false, "Only report whether a new day has started")
	newdayCmd.Flags().BoolVarP(&newdayFlagYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(newdayCmd)
}

func runNewday(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}

	tz := ctx.TimezoneName()
	today := ctx.Sheet.Today()
	res := newdayResult{Date: output.FormatDate(today)}

	isNew, err := ctx.Days.IsBrandNewDay(tz)
	if err != nil {
		// Acknowledge below overwrites an unreadable marker.
		logging.Warn("day marker unreadable, treating today as new", logging.KeyError, err)
		isNew = true
	}
	res.NewDay = isNew
	if !isNew {
		return ctx.Renderer.Result("Today has already been started", res)
	}
	if newdayFlagCheck {
		return ctx.Renderer.Result("A new day has started: "+output.FormatDay(today), res)
	}

	if !newdayFlagYes && isInteractive() && !ctx.IsJSON() {
		running, err := ctx.Entries.ListRunning()
		if err != nil {
			return err
		}
		ok, err := tui.ConfirmNewDay(today, len(running))
		if err != nil {
			return err
		}
		if !ok {
			return ctx.Renderer.Result("New day not started", res)
		}
	}

	stopped, err := ctx.Timer.StopAll()
	if err != nil {
		return err
	}
	copied, err := ctx.Sheet.CopyForward()
	if err != nil {
		return err
	}
	if _, err := ctx.Days.Acknowledge(tz); err != nil {
		return err
	}

	res.Acknowledged = true
	res.Stopped = len(stopped)
	res.Copied = len(copied)
	return ctx.Renderer.Result(fmt.Sprintf("Started %s: stopped %s, copied %s",
		output.FormatDay(today), plural(res.Stopped, "timer"), plural(res.Copied, "entry")), res)
}
