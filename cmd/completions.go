package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/runtime"
)

// completionStore makes sure the store is open for dynamic completion.
// Failures only mean no suggestions.
func completionStore() bool {
	if ctx == nil {
		opts := runtime.DefaultOptions()
		opts.ConfigPath = flagConfig
		c, err := runtime.New(opts)
		if err != nil {
			return false
		}
		ctx = c
	}
	return ctx.Open() == nil
}

// completeEntries suggests the short ids of the last week's entries.
func completeEntries(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || !completionStore() {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	today := ctx.Sheet.Today()
	entries, err := ctx.Sheet.Range(today.AddDate(0, 0, -7), today)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		id := e.ShortID()
		if !strings.HasPrefix(id, strings.ToLower(toComplete)) {
			continue
		}
		completions = append(completions, id+"\t"+entryDescription(e))
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

func entryDescription(e *model.TimeEntry) string {
	parts := []string{e.EntryDate.Format("Mon 01-02"), e.Client}
	if e.ProjectCode != "" {
		parts = append(parts, e.ProjectCode)
	}
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	if e.Running {
		parts = append(parts, "(running)")
	}
	return strings.Join(parts, " ")
}

// completeSettings suggests setting types for the first argument.
func completeSettings(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		if t, err := settingType(args[0]); err == nil && boolSettings[t] {
			return []string{"true", "false"}, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var completions []string
	for _, t := range model.SettingTypes {
		if strings.HasPrefix(strings.ToLower(t), strings.ToLower(toComplete)) {
			completions = append(completions, t)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeDays suggests common relative dates.
func completeDays(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	days := []string{
		"today\ttoday's entries",
		"yesterday\tyesterday's entries",
		"monday\tlast monday",
		"friday\tlast friday",
	}
	var filtered []string
	for _, d := range days {
		if strings.HasPrefix(strings.Split(d, "\t")[0], toComplete) {
			filtered = append(filtered, d)
		}
	}
	return filtered, cobra.ShellCompDirectiveNoFileComp
}

// completeWeekdays suggests values for --days.
func completeWeekdays(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var completions []string
	for _, v := range []string{"all", "weekdays", "weekend", "mon-fri", "sun-sat"} {
		if strings.HasPrefix(v, toComplete) {
			completions = append(completions, v)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
