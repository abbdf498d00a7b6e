package billing

import (
	"math"
	"time"

	"github.com/manav03panchal/timesheet/internal/model"
)

// DefaultAnnualGoal is the billable-hours goal used when none is configured.
const DefaultAnnualGoal = 1500.0

// FilterBillable keeps entries whose project and task codes belong to a
// Billable billing manager.
func FilterBillable(entries []*model.TimeEntry, managers []*model.BillingManager) []*model.TimeEntry {
	type pair struct{ project, task string }
	billable := make(map[pair]bool)
	for _, m := range managers {
		if m.IsBillable() {
			billable[pair{m.ProjectCode, m.TaskCode}] = true
		}
	}

	var out []*model.TimeEntry
	for _, e := range entries {
		if e.Client == "" {
			continue
		}
		if billable[pair{e.ProjectCode, e.TaskCode}] {
			out = append(out, e)
		}
	}
	return out
}

// GoalReport compares billable hours against the annual goal.
type GoalReport struct {
	AsOf              time.Time `json:"asOf"`
	AnnualGoal        float64   `json:"annualGoal"`
	MonthlyGoal       float64   `json:"monthlyGoal"`
	MonthlyActual     float64   `json:"monthlyActual"`
	MonthlyPercent    float64   `json:"monthlyPercent"`
	YTDGoal           float64   `json:"ytdGoal"`
	YTDActual         float64   `json:"ytdActual"`
	YTDPercent        float64   `json:"ytdPercent"`
	RemainingWorkDays int       `json:"remainingWorkDays"`
	DailyTarget       float64   `json:"dailyTarget"`
}

// GoalProgress reports billable progress for the year containing asOf.
// entries should cover the year to date. A non-positive goal uses
// DefaultAnnualGoal.
func GoalProgress(entries []*model.TimeEntry, managers []*model.BillingManager, goal float64, asOf time.Time) GoalReport {
	if goal <= 0 {
		goal = DefaultAnnualGoal
	}
	billable := FilterBillable(entries, managers)

	year, month := asOf.Year(), asOf.Month()
	yearStart := time.Date(year, 1, 1, 0, 0, 0, 0, asOf.Location()).Format("2006-01-02")
	asOfDate := asOf.Format("2006-01-02")

	var monthSeconds, ytdSeconds int64
	for _, e := range billable {
		d := e.EntryDate.Format("2006-01-02")
		if d < yearStart || d > asOfDate {
			continue
		}
		ytdSeconds += e.DurationSeconds
		if e.EntryDate.Year() == year && e.EntryDate.Month() == month {
			monthSeconds += e.DurationSeconds
		}
	}

	r := GoalReport{
		AsOf:          asOf,
		AnnualGoal:    goal,
		MonthlyGoal:   roundHundredths(goal / 12),
		MonthlyActual: ConvertBillingHours(monthSeconds),
		YTDActual:     ConvertBillingHours(ytdSeconds),
	}
	// Goal for the months already completed.
	r.YTDGoal = roundHundredths(goal / 12 * float64(month-1))
	r.MonthlyPercent = percent(r.MonthlyActual, r.MonthlyGoal)
	r.YTDPercent = percent(r.YTDActual, r.YTDGoal)

	yearEnd := time.Date(year, 12, 31, 0, 0, 0, 0, asOf.Location())
	r.RemainingWorkDays = WorkDaysBetween(asOf, yearEnd)
	if r.RemainingWorkDays > 0 {
		remaining := math.Max(goal-r.YTDActual, 0)
		r.DailyTarget = roundHundredths(remaining / float64(r.RemainingWorkDays))
	}
	return r
}

// WorkDaysBetween counts Monday to Friday dates from from to to inclusive.
func WorkDaysBetween(from, to time.Time) int {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

func percent(actual, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return roundHundredths(actual / goal * 100)
}

func roundHundredths(v float64) float64 {
	return math.Round(v*100) / 100
}
