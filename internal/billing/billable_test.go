package billing

import (
	"testing"
	"time"

	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/stretchr/testify/assert"
)

func managers() []*model.BillingManager {
	return []*model.BillingManager{
		{Client: "Acme", ProjectCode: "P1", TaskCode: "T1", BillingType: model.BillingTypeBillable},
		{Client: "Acme", ProjectCode: "P1", TaskCode: "T2", BillingType: model.BillingTypeNonBillable},
	}
}

func TestFilterBillable(t *testing.T) {
	entries := []*model.TimeEntry{
		entry("Acme", "P1", "T1", "billable", weekDay(1), 3600),
		entry("Acme", "P1", "T2", "internal", weekDay(1), 3600),
		entry("Acme", "P9", "T1", "unknown", weekDay(1), 3600),
		entry("", "P1", "T1", "no client", weekDay(1), 3600),
	}

	got := FilterBillable(entries, managers())
	assert.Len(t, got, 1)
	assert.Equal(t, "billable", got[0].Description)
	assert.Empty(t, FilterBillable(entries, nil))
}

func TestGoalProgress(t *testing.T) {
	asOf := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	entries := []*model.TimeEntry{
		entry("Acme", "P1", "T1", "jan", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), 100*3600),
		entry("Acme", "P1", "T1", "mar", time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 10*3600),
		entry("Acme", "P1", "T2", "internal", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), 50*3600),
		entry("Acme", "P1", "T1", "last year", time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), 50*3600),
		entry("Acme", "P1", "T1", "future", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), 50*3600),
	}

	r := GoalProgress(entries, managers(), 1200, asOf)
	assert.Equal(t, 1200.0, r.AnnualGoal)
	assert.Equal(t, 100.0, r.MonthlyGoal)
	assert.Equal(t, 10.0, r.MonthlyActual)
	assert.Equal(t, 10.0, r.MonthlyPercent)
	assert.Equal(t, 110.0, r.YTDActual)
	assert.Equal(t, 200.0, r.YTDGoal)
	assert.Equal(t, 55.0, r.YTDPercent)
	assert.Greater(t, r.RemainingWorkDays, 200)
	assert.InDelta(t, (1200.0-110.0)/float64(r.RemainingWorkDays), r.DailyTarget, 0.01)

	t.Run("default_goal", func(t *testing.T) {
		r := GoalProgress(nil, nil, 0, asOf)
		assert.Equal(t, DefaultAnnualGoal, r.AnnualGoal)
		assert.Equal(t, 125.0, r.MonthlyGoal)
	})

	t.Run("january_has_no_ytd_goal", func(t *testing.T) {
		r := GoalProgress(nil, nil, 1200, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 0.0, r.YTDGoal)
		assert.Equal(t, 0.0, r.YTDPercent)
	})
}

func TestWorkDaysBetween(t *testing.T) {
	// Mon 2025-07-07 to Sun 2025-07-13
	assert.Equal(t, 5, WorkDaysBetween(weekDay(1), weekDay(7)))
	assert.Equal(t, 0, WorkDaysBetween(weekDay(0), weekDay(0)))
	assert.Equal(t, 1, WorkDaysBetween(weekDay(1), weekDay(1)))
	assert.Equal(t, 0, WorkDaysBetween(weekDay(2), weekDay(1)))
}
