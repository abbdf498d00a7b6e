package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/timesheet/internal/dayboundary"
	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/output"
)

// settingsCmd represents the settings command.
var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"set", "prefs"},
	Short:   "View and change settings",
	Long: `View and change stored preferences. Settings are backed up with
sync push and restored with sync restore.

Known settings:
  timezone                 IANA zone for day boundaries, e.g. Europe/London
  copytimesheet            true to copy the previous day's entries forward
  decimalmark              "." or "," for hours
  worklocation             default work location for new entries
  oracleentity             payroll entity
  isContractual            true or false
  showcomments             true to show comments in listings
  includecommentsonupload  true to append comments in uploads
  autoSubmitTimesheet      true or false
  billableGoal             annual billable hours goal

Examples:
  timesheet settings
  timesheet settings get timezone
  timesheet settings set timezone America/Toronto`,
	Args: cobra.NoArgs,
	RunE: runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:               "get TYPE",
	Short:             "Show one setting",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeSettings,
	RunE:              runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:               "set TYPE VALUE",
	Short:             "Change a setting",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeSettings,
	RunE:              runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingType matches a known setting type case-insensitively.
func settingType(name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, t := range model.SettingTypes {
		if strings.EqualFold(t, name) {
			return t, nil
		}
	}
	return "", tserrors.NewValidationError("setting", name, "unknown setting", tserrors.ErrUnknownSetting)
}

var boolSettings = map[string]bool{
	model.SettingCopyTimesheet:           true,
	model.SettingIsContractual:           true,
	model.SettingShowComments:            true,
	model.SettingIncludeCommentsOnUpload: true,
	model.SettingAutoSubmitTimesheet:     true,
}

// normalizeSetting validates value for a setting type.
func normalizeSetting(t, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch {
	case t == model.SettingTimezone:
		if value == "" {
			return "", nil
		}
		if !dayboundary.IsValidZone(value) {
			return "", tserrors.NewValidationError("timezone", value, "unknown IANA zone", tserrors.ErrInvalidTimezone)
		}
	case t == model.SettingDecimalMark:
		if value != "." && value != "," {
			return "", tserrors.NewUserErrorWithField("decimalmark", value, "must be \".\" or \",\"", "")
		}
	case t == model.SettingBillableGoal:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return "", tserrors.NewUserErrorWithField(t, value, "must be a non-negative number of hours", "e.g. 1500")
		}
	case boolSettings[t]:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", tserrors.NewUserErrorWithField(t, value, "must be true or false", "")
		}
		value = strconv.FormatBool(b)
	}
	return value, nil
}

func runSettingsList(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}
	settings, err := ctx.Settings.List()
	if err != nil {
		return err
	}
	return ctx.Renderer.Settings(settings)
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}
	t, err := settingType(args[0])
	if err != nil {
		return err
	}
	value, _, err := ctx.Settings.GetValue(t)
	if err != nil {
		return err
	}
	return ctx.Renderer.Result(value, output.SettingOutput{Type: t, Value: value})
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}
	t, err := settingType(args[0])
	if err != nil {
		return err
	}
	value, err := normalizeSetting(t, args[1])
	if err != nil {
		return err
	}
	if err := ctx.Settings.SetValue(t, value); err != nil {
		return err
	}
	return ctx.Renderer.Result(fmt.Sprintf("%s set to %q", t, value), output.SettingOutput{Type: t, Value: value})
}
