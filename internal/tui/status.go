package tui

import (
	"strings"

	"github.com/manav03panchal/timesheet/internal/billing"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/parser"
)

// StatusComponent displays the running entry.
type StatusComponent struct {
	Entry       *model.TimeEntry
	Elapsed     int64
	Width       int
	DecimalMark string
}

// NewStatusComponent creates a status component. entry may be nil.
func NewStatusComponent(entry *model.TimeEntry, elapsed int64, width int) *StatusComponent {
	return &StatusComponent{Entry: entry, Elapsed: elapsed, Width: width}
}

// View renders the status component.
func (sc *StatusComponent) View() string {
	var content strings.Builder

	if sc.Entry == nil {
		content.WriteString(StyleInactive.Render("No timer running"))
		content.WriteString("\n\n")
		content.WriteString(StyleSubtitle.Render("Select an entry and press enter to start it"))
		return StyleStatusBox.Width(boxWidth(sc.Width)).Render(content.String())
	}

	e := sc.Entry
	content.WriteString(StyleActive.Render("● RUNNING"))
	content.WriteString("\n\n")
	content.WriteString(FormatCodes(e.Client, e.ProjectCode, e.TaskCode))
	if e.Description != "" {
		content.WriteString("  " + e.Description)
	}
	content.WriteString("\n\n")
	content.WriteString(StyleDuration.Render(parser.FormatDuration(sc.Elapsed)))
	content.WriteString(StyleSubtitle.Render("  " +
		billing.FormatHours(billing.ConvertBillingHours(sc.Elapsed), sc.DecimalMark) + " h billable"))

	return StyleActiveStatusBox.Width(boxWidth(sc.Width)).Render(content.String())
}

func boxWidth(width int) int {
	if width < 24 {
		return 20
	}
	return width - 4
}
