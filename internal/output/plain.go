package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/timesheet/internal/billing"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/parser"
)

// PlainFormatter renders tab-separated lines without color or headers, for
// scripts.
type PlainFormatter struct {
	*Formatter
}

// NewPlainFormatter creates a new plain formatter.
func NewPlainFormatter(f *Formatter) *PlainFormatter {
	return &PlainFormatter{Formatter: f}
}

func (p *PlainFormatter) line(cols ...string) {
	p.Println(strings.Join(cols, "\t"))
}

func (p *PlainFormatter) entryLine(r EntryRow) {
	e := r.Entry
	state := "stopped"
	if e.Running {
		state = "running"
	}
	p.line(e.ID(), FormatDate(e.EntryDate), e.Client, e.ProjectCode, e.TaskCode,
		e.Description, parser.FormatDuration(r.Seconds), state)
}

// Status prints "running" or "idle" then today's total.
func (p *PlainFormatter) Status(v StatusView) error {
	if v.Running == nil {
		p.line("idle")
	} else {
		p.entryLine(*v.Running)
	}
	p.line("today", FormatDate(v.Date), parser.FormatDuration(v.TodaySeconds))
	return nil
}

// Entries prints one line per entry.
func (p *PlainFormatter) Entries(v EntriesView) error {
	for _, r := range v.Rows {
		p.entryLine(r)
	}
	return nil
}

// EntryChanged prints stopped entries then the changed one.
func (p *PlainFormatter) EntryChanged(action string, row EntryRow, stopped []EntryRow) error {
	for _, s := range stopped {
		p.entryLine(s)
	}
	p.entryLine(row)
	return nil
}

// Upload prints one line per row with seven day columns and a total.
func (p *PlainFormatter) Upload(v UploadView) error {
	for i := range v.Rows {
		r := &v.Rows[i]
		cols := []string{r.ID, r.Client, r.ProjectCode, r.TaskCode, r.TaskDescription, r.WorkLocation}
		for d := time.Sunday; d <= time.Saturday; d++ {
			cols = append(cols, billing.FormatHours(r.Hours(d), v.DecimalMark))
		}
		cols = append(cols, billing.FormatHours(r.Total(), v.DecimalMark))
		p.line(cols...)
	}
	return nil
}

// BillingManagers prints one line per manager.
func (p *PlainFormatter) BillingManagers(managers []*model.BillingManager) error {
	for _, b := range managers {
		p.line(model.KeyID(b.Key), b.Client, b.ProjectCode, b.TaskCode, b.BillingType, fmt.Sprint(b.Archived))
	}
	return nil
}

// Goal prints key/value lines.
func (p *PlainFormatter) Goal(r billing.GoalReport) error {
	p.line("annual_goal", fmt.Sprintf("%.2f", r.AnnualGoal))
	p.line("monthly_goal", fmt.Sprintf("%.2f", r.MonthlyGoal))
	p.line("monthly_actual", fmt.Sprintf("%.1f", r.MonthlyActual))
	p.line("ytd_goal", fmt.Sprintf("%.2f", r.YTDGoal))
	p.line("ytd_actual", fmt.Sprintf("%.1f", r.YTDActual))
	p.line("remaining_work_days", fmt.Sprint(r.RemainingWorkDays))
	p.line("daily_target", fmt.Sprintf("%.2f", r.DailyTarget))
	return nil
}

// Settings prints stored settings as type/value lines.
func (p *PlainFormatter) Settings(settings []*model.Setting) error {
	for _, s := range settings {
		p.line(s.Type, s.Value)
	}
	return nil
}

// Message prints text.
func (p *PlainFormatter) Message(_ Level, text string) error {
	p.Println(text)
	return nil
}

// Result prints summary.
func (p *PlainFormatter) Result(summary string, _ any) error {
	p.Println(summary)
	return nil
}

// Error prints the error message to the error writer.
func (p *PlainFormatter) Error(err error) error {
	w := p.ErrWriter
	if w == nil {
		w = p.Writer
	}
	fmt.Fprintln(w, "error: "+err.Error())
	return nil
}
