package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-07-06 is a Sunday.
func weekDay(offset int) time.Time {
	return time.Date(2025, 7, 6+offset, 0, 0, 0, 0, time.UTC)
}

func entry(client, project, task, desc string, date time.Time, seconds int64) *model.TimeEntry {
	return &model.TimeEntry{
		Client:          client,
		ProjectCode:     project,
		TaskCode:        task,
		Description:     desc,
		EntryDate:       date,
		DurationSeconds: seconds,
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("row-%d", n)
	}
}

func allDays() []time.Weekday {
	return []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}

func TestBuildUploadRows(t *testing.T) {
	week := UploadOptions{From: weekDay(0), To: weekDay(6), Days: allDays()}

	t.Run("groups_and_buckets_by_weekday", func(t *testing.T) {
		entries := []*model.TimeEntry{
			entry("Acme", "P1", "T1", "Build", weekDay(1), 3600),
			entry("Acme", "P1", "T1", "Build ", weekDay(1), 1800),
			entry("Acme", "P1", "T1", "Build", weekDay(3), 5400),
			entry("Beta", "P2", "T1", "Review", weekDay(2), 600),
		}
		rows := BuildUploadRows(entries, week, sequentialIDs())
		require.Len(t, rows, 2)

		acme := rows[0]
		assert.Equal(t, "row-1", acme.ID)
		assert.Equal(t, "Acme", acme.Client)
		assert.Equal(t, "Build", acme.TaskDescription)
		assert.Equal(t, 1.5, acme.MonHours)
		assert.Equal(t, 1.5, acme.WedHours)
		assert.Equal(t, 0.0, acme.SunHours)
		assert.Equal(t, 3.0, acme.Total())

		beta := rows[1]
		assert.Equal(t, "Beta", beta.Client)
		assert.Equal(t, 0.2, beta.TueHours)
	})

	t.Run("bucket_sums_are_rounded", func(t *testing.T) {
		entries := []*model.TimeEntry{
			entry("Acme", "P1", "T1", "x", weekDay(1), 60),
			entry("Acme", "P1", "T1", "x", weekDay(1), 420),
		}
		rows := BuildUploadRows(entries, week, sequentialIDs())
		require.Len(t, rows, 1)
		assert.Equal(t, 0.3, rows[0].MonHours)
	})

	t.Run("skips_out_of_range_and_clientless", func(t *testing.T) {
		entries := []*model.TimeEntry{
			entry("Acme", "P1", "T1", "x", weekDay(-1), 3600),
			entry("Acme", "P1", "T1", "x", weekDay(7), 3600),
			entry("", "P1", "T1", "x", weekDay(2), 3600),
			entry("Acme", "P1", "T1", "x", weekDay(6), 3600),
		}
		rows := BuildUploadRows(entries, week, sequentialIDs())
		require.Len(t, rows, 1)
		assert.Equal(t, 1.0, rows[0].SatHours)
	})

	t.Run("range_end_includes_whole_day", func(t *testing.T) {
		detroit, err := time.LoadLocation("America/Detroit")
		require.NoError(t, err)
		e := entry("Acme", "P1", "T1", "x", time.Date(2025, 7, 12, 0, 0, 0, 0, detroit), 3600)
		opts := UploadOptions{From: weekDay(0), To: time.Date(2025, 7, 12, 0, 0, 0, 0, detroit), Days: allDays()}
		rows := BuildUploadRows([]*model.TimeEntry{e}, opts, sequentialIDs())
		require.Len(t, rows, 1)
		assert.Equal(t, 1.0, rows[0].SatHours)
	})

	t.Run("filters_weekdays", func(t *testing.T) {
		entries := []*model.TimeEntry{
			entry("Acme", "P1", "T1", "x", weekDay(0), 3600),
			entry("Acme", "P1", "T1", "x", weekDay(1), 3600),
		}
		opts := week
		opts.Days = []time.Weekday{time.Monday}
		rows := BuildUploadRows(entries, opts, sequentialIDs())
		require.Len(t, rows, 1)
		assert.Equal(t, 0.0, rows[0].SunHours)
		assert.Equal(t, 1.0, rows[0].MonHours)
	})

	t.Run("drops_zero_rows", func(t *testing.T) {
		entries := []*model.TimeEntry{
			entry("Acme", "P1", "T1", "short", weekDay(1), 30),
			entry("Acme", "P1", "T1", "long", weekDay(1), 3600),
		}
		rows := BuildUploadRows(entries, week, sequentialIDs())
		require.Len(t, rows, 1)
		assert.Equal(t, "long", rows[0].TaskDescription)
		assert.Equal(t, "row-2", rows[0].ID)
	})

	t.Run("work_location_splits_rows", func(t *testing.T) {
		a := entry("Acme", "P1", "T1", "x", weekDay(1), 3600)
		b := entry("Acme", "P1", "T1", "x", weekDay(1), 3600)
		b.WorkLocation = "office"
		rows := BuildUploadRows([]*model.TimeEntry{a, b}, week, sequentialIDs())
		assert.Len(t, rows, 2)
	})

	t.Run("default_ids_are_uuids", func(t *testing.T) {
		rows := BuildUploadRows([]*model.TimeEntry{entry("Acme", "P1", "T1", "x", weekDay(1), 3600)}, week, nil)
		require.Len(t, rows, 1)
		assert.Len(t, rows[0].ID, 36)
	})
}

func TestUploadDescription(t *testing.T) {
	e := &model.TimeEntry{Description: "  Build  ", Comments: " with pairing "}

	assert.Equal(t, "Build", UploadDescription(e, false))
	assert.Equal(t, "Build - with pairing", UploadDescription(e, true))

	onlyComments := &model.TimeEntry{Comments: "notes"}
	assert.Equal(t, "notes", UploadDescription(onlyComments, true))
	assert.Equal(t, "", UploadDescription(&model.TimeEntry{}, true))
}

func TestUploadCommentsSplitRows(t *testing.T) {
	a := entry("Acme", "P1", "T1", "Build", weekDay(1), 3600)
	b := entry("Acme", "P1", "T1", "Build", weekDay(1), 3600)
	b.Comments = "pairing"
	opts := UploadOptions{From: weekDay(0), To: weekDay(6), Days: allDays(), IncludeComments: true}

	rows := BuildUploadRows([]*model.TimeEntry{a, b}, opts, sequentialIDs())
	require.Len(t, rows, 2)
	assert.Equal(t, "Build", rows[0].TaskDescription)
	assert.Equal(t, "Build - pairing", rows[1].TaskDescription)

	opts.IncludeComments = false
	rows = BuildUploadRows([]*model.TimeEntry{a, b}, opts, sequentialIDs())
	require.Len(t, rows, 1)
	assert.Equal(t, 2.0, rows[0].MonHours)
}
