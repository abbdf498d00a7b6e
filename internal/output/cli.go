package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/timesheet/internal/billing"
	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/parser"
)

// Styles for CLI output.
var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#10B981") // Green
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorWarning   = lipgloss.Color("#F59E0B") // Yellow
	colorError     = lipgloss.Color("#EF4444") // Red

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSecondary)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleClient = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	styleNote = lipgloss.NewStyle().
			Italic(true).
			Foreground(colorMuted)
)

// CLIFormatter renders styled text for a terminal.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) style(s lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return s.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.style(styleTitle, text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.style(styleMuted, text))
}

// Label formats "Client / Project / Task".
func (c *CLIFormatter) Label(e *model.TimeEntry) string {
	parts := []string{c.style(styleClient, e.Client)}
	if e.ProjectCode != "" {
		parts = append(parts, e.ProjectCode)
	}
	if e.TaskCode != "" {
		parts = append(parts, e.TaskCode)
	}
	return strings.Join(parts, " / ")
}

func hours(seconds int64, mark string) string {
	return billing.FormatHours(billing.ConvertBillingHours(seconds), mark) + "h"
}

// Status prints the running entry and today's total.
func (c *CLIFormatter) Status(v StatusView) error {
	if v.Running == nil {
		c.Muted("No timer running.")
		c.Muted("Use 'timesheet start <entry>' or 'timesheet start --new' to begin.")
	} else {
		e := v.Running.Entry
		c.Printf("%s %s  %s\n", c.style(styleRunning, "●"), c.Label(e), e.Description)
		c.Printf("  Elapsed: %s  (%s billable)\n",
			c.style(styleBold, parser.FormatDuration(v.Running.Seconds)), hours(v.Running.Seconds, v.DecimalMark))
		if e.StartedAt != nil {
			c.Printf("  Started: %s\n", e.StartedAt.In(v.Date.Location()).Format("15:04"))
		}
		c.Printf("  Entry:   %s\n", c.style(styleMuted, e.ShortID()))
	}
	c.Printf("Today (%s): %s  %s\n", FormatDay(v.Date),
		parser.FormatDuration(v.TodaySeconds), c.style(styleMuted, hours(v.TodaySeconds, v.DecimalMark)))
	return nil
}

// Entries prints a table of entries with a total line.
func (c *CLIFormatter) Entries(v EntriesView) error {
	if v.Title != "" {
		c.Title(v.Title)
	}
	if len(v.Rows) == 0 {
		c.Muted("No entries.")
		return nil
	}

	headers := []string{"ID", "DATE", "CLIENT", "PROJECT", "TASK", "DESCRIPTION", "DURATION", "HOURS", ""}
	rows := make([]TableRow, 0, len(v.Rows))
	for _, r := range v.Rows {
		e := r.Entry
		state := ""
		if e.Running {
			state = "running"
		}
		rows = append(rows, TableRow{Columns: []string{
			e.ShortID(), FormatDate(e.EntryDate), e.Client, e.ProjectCode, e.TaskCode,
			e.Description, parser.FormatDuration(r.Seconds), hours(r.Seconds, v.DecimalMark), state,
		}})
		if v.ShowComments && e.Comments != "" {
			rows = append(rows, TableRow{Columns: []string{"", "", "", "", "", "  " + e.Comments}})
		}
	}
	c.PrintTable(headers, rows)

	total := v.TotalSeconds()
	c.Printf("\nTotal: %s  (%s)\n", c.style(styleBold, parser.FormatDuration(total)), hours(total, v.DecimalMark))
	return nil
}

// EntryChanged prints the outcome of an entry action.
func (c *CLIFormatter) EntryChanged(action string, row EntryRow, stopped []EntryRow) error {
	for _, s := range stopped {
		c.Printf("Stopped %s  %s (%s)\n", c.Label(s.Entry), s.Entry.Description, parser.FormatDuration(s.Seconds))
	}
	e := row.Entry
	c.Println(c.style(styleSuccess, fmt.Sprintf("✓ %s %s", capitalize(action), e.ShortID())))
	c.Printf("  %s  %s\n", c.Label(e), e.Description)
	if e.Comments != "" {
		c.Printf("  %s\n", c.style(styleNote, e.Comments))
	}
	c.Printf("  Date: %s  Duration: %s\n", FormatDate(e.EntryDate), parser.FormatDuration(row.Seconds))
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var weekdayHeaders = []string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// Upload prints the weekly upload rows.
func (c *CLIFormatter) Upload(v UploadView) error {
	c.Title(fmt.Sprintf("Upload %s to %s", FormatDate(v.From), FormatDate(v.To)))
	if len(v.Rows) == 0 {
		c.Muted("Nothing to upload.")
		return nil
	}

	headers := append([]string{"CLIENT", "PROJECT", "TASK", "DESCRIPTION", "LOCATION"}, weekdayHeaders...)
	headers = append(headers, "TOTAL")
	rows := make([]TableRow, 0, len(v.Rows))
	var grand float64
	for i := range v.Rows {
		r := &v.Rows[i]
		cols := []string{r.Client, r.ProjectCode, r.TaskCode, r.TaskDescription, r.WorkLocation}
		for d := time.Sunday; d <= time.Saturday; d++ {
			cols = append(cols, billing.FormatHours(r.Hours(d), v.DecimalMark))
		}
		cols = append(cols, billing.FormatHours(r.Total(), v.DecimalMark))
		grand += r.Total()
		rows = append(rows, TableRow{Columns: cols})
	}
	c.PrintTable(headers, rows)
	c.Printf("\nTotal: %s hours\n", c.style(styleBold, billing.FormatHours(billing.RoundTenths(grand), v.DecimalMark)))
	return nil
}

// BillingManagers prints billing managers.
func (c *CLIFormatter) BillingManagers(managers []*model.BillingManager) error {
	if len(managers) == 0 {
		c.Muted("No billing managers.")
		return nil
	}
	rows := make([]TableRow, 0, len(managers))
	for _, b := range managers {
		state := ""
		if b.Archived {
			state = "archived"
		}
		id := model.KeyID(b.Key)
		if len(id) > 8 {
			id = id[len(id)-8:]
		}
		rows = append(rows, TableRow{Columns: []string{id, b.Client, b.ProjectCode, b.TaskCode, b.BillingType, state}})
	}
	c.PrintTable([]string{"ID", "CLIENT", "PROJECT", "TASK", "TYPE", ""}, rows)
	return nil
}

// Goal prints billable goal progress.
func (c *CLIFormatter) Goal(r billing.GoalReport) error {
	c.Title(fmt.Sprintf("Billable goal %d (as of %s)", r.AsOf.Year(), FormatDate(r.AsOf)))
	c.Printf("  Annual goal:   %.0f h\n", r.AnnualGoal)
	c.Printf("  This month:    %.1f / %.2f h  %s %.0f%%\n",
		r.MonthlyActual, r.MonthlyGoal, ProgressBar(r.MonthlyPercent, 20), r.MonthlyPercent)
	c.Printf("  Year to date:  %.1f / %.2f h  %s %.0f%%\n",
		r.YTDActual, r.YTDGoal, ProgressBar(r.YTDPercent, 20), r.YTDPercent)
	c.Printf("  Remaining:     %d work days, %.2f h/day\n", r.RemainingWorkDays, r.DailyTarget)
	return nil
}

// Settings prints settings, including unset known types.
func (c *CLIFormatter) Settings(settings []*model.Setting) error {
	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Type] = s.Value
	}
	rows := make([]TableRow, 0, len(model.SettingTypes))
	for _, t := range model.SettingTypes {
		v, ok := values[t]
		if !ok {
			v = c.style(styleMuted, "(unset)")
		}
		rows = append(rows, TableRow{Columns: []string{t, v}})
	}
	c.PrintTable([]string{"SETTING", "VALUE"}, rows)
	return nil
}

// Message prints a one-line message.
func (c *CLIFormatter) Message(level Level, text string) error {
	switch level {
	case LevelSuccess:
		c.Println(c.style(styleSuccess, "✓ "+text))
	case LevelWarning:
		c.Println(c.style(styleWarning, "⚠ "+text))
	default:
		c.Println(text)
	}
	return nil
}

// Result prints summary.
func (c *CLIFormatter) Result(summary string, _ any) error {
	c.Println(summary)
	return nil
}

// Error prints err with its suggestion to the error writer.
func (c *CLIFormatter) Error(err error) error {
	w := c.ErrWriter
	if w == nil {
		w = c.Writer
	}
	msg := err.Error()
	if ue, ok := tserrors.AsUserError(err); ok {
		msg = ue.Error()
	}
	fmt.Fprintln(w, c.style(styleError, "✗ "+msg))
	if s := tserrors.GetSuggestion(err); s != "" {
		fmt.Fprintln(w, c.style(styleMuted, "  "+s))
	}
	if valid := parser.ExamplesFor(err); len(valid) > 0 {
		fmt.Fprintln(w, c.style(styleMuted, "  Valid input: "+strings.Join(valid, ", ")))
	}
	if examples := tserrors.GetExamples(err); len(examples) > 0 {
		fmt.Fprintln(w, c.style(styleMuted, "  Examples:"))
		for _, ex := range examples {
			fmt.Fprintln(w, c.style(styleMuted, "    "+ex))
		}
	}
	return nil
}

// ProgressBar creates a simple progress bar.
func ProgressBar(percentage float64, width int) string {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}
	filled := int(float64(width) * percentage / 100)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// TableRow is one row of a CLI table.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple aligned table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	pad := func(s string, w int) string {
		return s + strings.Repeat(" ", w-lipgloss.Width(s)) + "  "
	}

	var header strings.Builder
	for i, h := range headers {
		header.WriteString(pad(h, widths[i]))
	}
	c.Println(c.style(styleBold, strings.TrimRight(header.String(), " ")))

	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				line.WriteString(pad(col, widths[i]))
			}
		}
		c.Println(strings.TrimRight(line.String(), " "))
	}
}
