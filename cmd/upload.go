package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/timesheet/internal/billing"
	"github.com/manav03panchal/timesheet/internal/output"
	"github.com/manav03panchal/timesheet/internal/parser"
)

// Upload command flags.
var (
	uploadFlagFrom     string
	uploadFlagTo       string
	uploadFlagDays     string
	uploadFlagComments bool
)

// uploadCmd represents the upload command.
var uploadCmd = &cobra.Command{
	Use:     "upload",
	Aliases: []string{"week", "payroll"},
	Short:   "Build the weekly payroll upload",
	Long: `Aggregate entries into weekly upload rows: one row per client,
project, task, work location and description, with billing hours per
weekday rounded to tenths.

The range defaults to the current week starting Sunday. Entries without a
client are left out.

Examples:
  timesheet upload
  timesheet upload --from "last sunday"
  timesheet upload --days mon-fri --comments
  timesheet upload -f json`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadFlagFrom, "from", "", "Range start (default this Sunday)")
	uploadCmd.Flags().StringVar(&uploadFlagTo, "to", "", "Range end (default six days after start)")
	uploadCmd.Flags().StringVar(&uploadFlagDays, "days", "", "Weekdays to include, e.g. mon-fri or sun,sat")
	uploadCmd.Flags().BoolVar(&uploadFlagComments, "comments", false,
		"Append comments to descriptions (default from settings)")

	uploadCmd.RegisterFlagCompletionFunc("days", completeWeekdays)
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}

	from, to, err := parser.ParseDateRange(uploadFlagFrom, uploadFlagTo, now())
	if err != nil {
		return err
	}
	days, err := parser.ParseWeekdays(uploadFlagDays)
	if err != nil {
		return err
	}

	var rows []billing.UploadRow
	if cmd.Flags().Changed("comments") {
		entries, err := ctx.Sheet.Range(from, to)
		if err != nil {
			return err
		}
		rows = billing.BuildUploadRows(entries, billing.UploadOptions{
			From:            from,
			To:              to,
			Days:            days,
			IncludeComments: uploadFlagComments,
		}, nil)
	} else if rows, err = ctx.Sheet.UploadRows(from, to, days); err != nil {
		return err
	}

	return ctx.Renderer.Upload(output.UploadView{
		From:        from,
		To:          to,
		Rows:        rows,
		DecimalMark: ctx.DecimalMark(),
	})
}
