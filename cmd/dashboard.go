package cmd

import (
	"github.com/spf13/cobra"

	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/tui"
)

// dashboardCmd represents the dashboard command.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "tui"},
	Short:   "Open the interactive TUI dashboard",
	Long: `Open an interactive terminal dashboard for today's entries.

The dashboard shows the running timer with live elapsed time and billable
hours, and today's entries with the day's total.

Keyboard Controls:
  ↑/k ↓/j - Move the selection
  enter   - Start or stop the selected entry
  r       - Refresh data
  q       - Quit dashboard

Examples:
  timesheet dashboard
  timesheet tui`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !isInteractive() {
		return tserrors.NewUserError("the dashboard needs a terminal", "Use 'timesheet today' instead")
	}
	if err := openStore(); err != nil {
		return err
	}
	return tui.Run(tui.DashboardConfig{
		Source:      ctx.Sheet,
		Timers:      ctx.Timer,
		DecimalMark: ctx.DecimalMark(),
		Now:         now,
	})
}
