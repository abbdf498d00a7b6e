// Package cmd provides the CLI commands for timesheet.
package cmd

import (
	"github.com/spf13/cobra"

	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/output"
	"github.com/manav03panchal/timesheet/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
	flagConfig string
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Track billable time against client projects",
	Long: `Timesheet tracks time entries against client projects and tasks, keeps
one timer running at a time, rounds hours for billing and backs everything
up to a sync server.

Examples:
  timesheet add --client Acme --project PRJ-1 --task DEV --desc "API work" --start
  timesheet stop
  timesheet today
  timesheet upload --from "last sunday"
  timesheet sync push`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		format, err := output.ParseFormat(flagFormat)
		if err != nil {
			return tserrors.NewUserErrorWithField("format", flagFormat, err.Error(), "")
		}
		colorMode, err := output.ParseColorMode(flagColor)
		if err != nil {
			return tserrors.NewUserErrorWithField("color", flagColor, err.Error(), "")
		}

		opts := runtime.DefaultOptions()
		opts.ConfigPath = flagConfig
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		ctx, err = runtime.New(opts)
		return err
	},
	RunE: runStatus,
}

// runStatus shows the running entry and today's total.
func runStatus(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}

	running, elapsed, err := ctx.Timer.Running()
	if err != nil {
		return err
	}
	today := ctx.Sheet.Today()
	total, err := ctx.Sheet.DayTotal(today)
	if err != nil {
		return err
	}

	view := output.StatusView{
		Date:         today,
		TodaySeconds: total,
		DecimalMark:  ctx.DecimalMark(),
	}
	if running != nil {
		view.Running = &output.EntryRow{Entry: running, Seconds: elapsed}
	}
	if err := ctx.Renderer.Status(view); err != nil {
		return err
	}

	if !ctx.IsJSON() {
		if isNew, err := ctx.Days.IsBrandNewDay(ctx.TimezoneName()); err == nil && isNew {
			return ctx.Renderer.Message(output.LevelWarning, "A new day has started. Run 'timesheet newday' to begin it.")
		}
	}
	return nil
}

// Exit codes returned by Execute.
const (
	exitOK        = 0
	exitError     = 1
	exitUserError = 2
)

// Execute runs the root command, renders any error and returns the process
// exit code. The store is closed even when the command fails.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil {
		renderError(err)
	}
	if ctx != nil {
		if cerr := ctx.Close(); cerr != nil && err == nil {
			renderError(cerr)
			err = cerr
		}
	}
	logging.Sync()

	switch {
	case err == nil:
		return exitOK
	case tserrors.Classify(err) == tserrors.CategoryUser:
		return exitUserError
	default:
		return exitError
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $XDG_CONFIG_HOME/timesheet/config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("timesheet %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}

func renderError(err error) {
	if flagDebug {
		logging.Debug("command failed", logging.KeyError, tserrors.FormatDebugError(err))
	}
	var r output.Renderer
	if ctx != nil {
		r = ctx.Renderer
	} else {
		r = output.New(output.NewFormatter())
	}
	_ = r.Error(err)
}
