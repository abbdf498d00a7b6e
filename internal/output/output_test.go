package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/timesheet/internal/billing"
	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/parser"
)

func newTestFormatter(format Format) (*Formatter, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &Formatter{
		Writer:    out,
		ErrWriter: errOut,
		Format:    format,
		ColorMode: ColorNever,
	}, out, errOut
}

func testEntry() *model.TimeEntry {
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	e := model.NewTimeEntry("Acme", "PRJ-1", "DEV", "API work", date)
	e.Key = model.GenerateKey(model.PrefixEntry, "0190b4e2-0000-7000-8000-56781234abcd")
	e.Comments = "pairing"
	return e
}

// =============================================================================
// Format parsing
// =============================================================================

func TestParseFormat(t *testing.T) {
	t.Run("known_formats", func(t *testing.T) {
		for _, s := range []string{"cli", "json", "plain"} {
			f, err := ParseFormat(s)
			require.NoError(t, err)
			assert.Equal(t, Format(s), f)
		}
	})

	t.Run("unknown_format", func(t *testing.T) {
		_, err := ParseFormat("xml")
		assert.Error(t, err)
	})
}

func TestParseColorMode(t *testing.T) {
	m, err := ParseColorMode("never")
	require.NoError(t, err)
	assert.Equal(t, ColorNever, m)

	_, err = ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestIsColorEnabled(t *testing.T) {
	f, _, _ := newTestFormatter(FormatCLI)

	f.ColorMode = ColorAlways
	assert.True(t, f.IsColorEnabled())

	f.ColorMode = ColorNever
	assert.False(t, f.IsColorEnabled())

	t.Run("auto_off_for_buffers", func(t *testing.T) {
		f.ColorMode = ColorAuto
		assert.False(t, f.IsColorEnabled())
	})
}

func TestNewRenderer(t *testing.T) {
	f, _, _ := newTestFormatter(FormatJSON)
	assert.IsType(t, &JSONFormatter{}, New(f))

	f.Format = FormatPlain
	assert.IsType(t, &PlainFormatter{}, New(f))

	f.Format = FormatCLI
	assert.IsType(t, &CLIFormatter{}, New(f))
}

// =============================================================================
// CLI
// =============================================================================

func TestCLIStatus(t *testing.T) {
	t.Run("idle", func(t *testing.T) {
		f, out, _ := newTestFormatter(FormatCLI)
		require.NoError(t, New(f).Status(StatusView{
			Date:         time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
			TodaySeconds: 5400,
		}))
		s := out.String()
		assert.Contains(t, s, "No timer running.")
		assert.Contains(t, s, "01:30:00")
		assert.Contains(t, s, "1.5h")
	})

	t.Run("running", func(t *testing.T) {
		f, out, _ := newTestFormatter(FormatCLI)
		e := testEntry()
		start := time.Date(2026, 3, 9, 9, 15, 0, 0, time.UTC)
		e.MarkRunning(start)
		require.NoError(t, New(f).Status(StatusView{
			Date:        start,
			Running:     &EntryRow{Entry: e, Seconds: 1500},
			DecimalMark: ",",
		}))
		s := out.String()
		assert.Contains(t, s, "Acme / PRJ-1 / DEV")
		assert.Contains(t, s, "00:25:00")
		assert.Contains(t, s, "0,5h")
		assert.Contains(t, s, "09:15")
		assert.Contains(t, s, "1234abcd")
	})
}

func TestCLIEntries(t *testing.T) {
	t.Run("table_and_total", func(t *testing.T) {
		f, out, _ := newTestFormatter(FormatCLI)
		e := testEntry()
		require.NoError(t, New(f).Entries(EntriesView{
			Title:        "Today",
			Rows:         []EntryRow{{Entry: e, Seconds: 3600}, {Entry: e, Seconds: 1800}},
			ShowComments: true,
		}))
		s := out.String()
		assert.Contains(t, s, "DESCRIPTION")
		assert.Contains(t, s, "API work")
		assert.Contains(t, s, "pairing")
		assert.Contains(t, s, "Total: 01:30:00")
	})

	t.Run("empty", func(t *testing.T) {
		f, out, _ := newTestFormatter(FormatCLI)
		require.NoError(t, New(f).Entries(EntriesView{}))
		assert.Contains(t, out.String(), "No entries.")
	})
}

func TestCLIEntryChanged(t *testing.T) {
	f, out, _ := newTestFormatter(FormatCLI)
	other := testEntry()
	other.Description = "Standup"
	require.NoError(t, New(f).EntryChanged("started", EntryRow{Entry: testEntry()},
		[]EntryRow{{Entry: other, Seconds: 900}}))
	s := out.String()
	assert.Contains(t, s, "Stopped Acme / PRJ-1 / DEV  Standup (00:15:00)")
	assert.Contains(t, s, "✓ Started 1234abcd")
}

func TestCLIUpload(t *testing.T) {
	f, out, _ := newTestFormatter(FormatCLI)
	rows := []billing.UploadRow{{
		ID: "r1", Client: "Acme", ProjectCode: "PRJ-1", TaskCode: "DEV",
		TaskDescription: "API work", MonHours: 1.5, TueHours: 2,
	}}
	require.NoError(t, New(f).Upload(UploadView{
		From: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Rows: rows,
	}))
	s := out.String()
	assert.Contains(t, s, "Upload 2026-03-08 to 2026-03-14")
	assert.Contains(t, s, "MON")
	assert.Contains(t, s, "Total: 3.5 hours")
}

func TestCLISettings(t *testing.T) {
	f, out, _ := newTestFormatter(FormatCLI)
	require.NoError(t, New(f).Settings([]*model.Setting{
		model.NewSetting(model.SettingDecimalMark, ","),
	}))
	s := out.String()
	assert.Contains(t, s, model.SettingDecimalMark)
	assert.Contains(t, s, "(unset)")
}

func TestCLIError(t *testing.T) {
	f, out, errOut := newTestFormatter(FormatCLI)
	require.NoError(t, New(f).Error(tserrors.ErrSyncNotConfigured))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "✗")
	assert.Contains(t, errOut.String(), "TIMESHEET_EMPLOYEE")
}

func TestCLIErrorExamples(t *testing.T) {
	t.Run("input_examples", func(t *testing.T) {
		f, _, errOut := newTestFormatter(FormatCLI)
		_, perr := parser.ResolveSeconds("soon")
		require.Error(t, perr)
		require.NoError(t, New(f).Error(perr))
		assert.Contains(t, errOut.String(), "Valid input: ")
		assert.Contains(t, errOut.String(), "90m")
	})

	t.Run("command_examples", func(t *testing.T) {
		f, _, errOut := newTestFormatter(FormatCLI)
		require.NoError(t, New(f).Error(tserrors.ErrNoRunningTimer))
		assert.Contains(t, errOut.String(), "Examples:")
		assert.Contains(t, errOut.String(), "timesheet start --new")
	})
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("░", 5), ProgressBar(50, 10))
	assert.Equal(t, strings.Repeat("█", 10), ProgressBar(150, 10))
	assert.Equal(t, strings.Repeat("░", 10), ProgressBar(-5, 10))
}

// =============================================================================
// JSON
// =============================================================================

func TestJSONStatus(t *testing.T) {
	f, out, _ := newTestFormatter(FormatJSON)
	e := testEntry()
	e.MarkRunning(time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC))
	require.NoError(t, New(f).Status(StatusView{
		Date:         time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Running:      &EntryRow{Entry: e, Seconds: 3660},
		TodaySeconds: 7200,
	}))

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "running", resp.Status)
	assert.Equal(t, "2026-03-09", resp.Date)
	assert.Equal(t, 2.0, resp.TodayHours)
	require.NotNil(t, resp.Running)
	assert.Equal(t, "01:01:00", resp.Running.Duration)
	assert.Equal(t, 1.1, resp.Running.BillableHours)
	assert.Equal(t, "1234abcd", resp.Running.ShortID)
	assert.Equal(t, e.ShortID(), resp.Running.ShortID)
	assert.NotEmpty(t, resp.Running.StartedAt)
}

func TestJSONEntries(t *testing.T) {
	f, out, _ := newTestFormatter(FormatJSON)
	require.NoError(t, New(f).Entries(EntriesView{
		Rows: []EntryRow{{Entry: testEntry(), Seconds: 1800}, {Entry: testEntry(), Seconds: 1800}},
	}))

	var resp EntriesResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, int64(3600), resp.TotalSeconds)
	assert.Equal(t, 1.0, resp.TotalHours)
}

func TestJSONUploadEmpty(t *testing.T) {
	f, out, _ := newTestFormatter(FormatJSON)
	require.NoError(t, New(f).Upload(UploadView{}))
	assert.Contains(t, out.String(), `"rows": []`)
}

func TestJSONError(t *testing.T) {
	f, out, errOut := newTestFormatter(FormatJSON)
	require.NoError(t, New(f).Error(tserrors.ErrNotLoggedIn))
	assert.Empty(t, errOut.String())

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.Error)
	assert.NotEmpty(t, resp.Category)
}

func TestJSONResult(t *testing.T) {
	t.Run("data", func(t *testing.T) {
		f, out, _ := newTestFormatter(FormatJSON)
		require.NoError(t, New(f).Result("pushed 3", map[string]int{"timesheets": 3}))
		assert.Contains(t, out.String(), `"timesheets": 3`)
	})

	t.Run("summary_only", func(t *testing.T) {
		f, out, _ := newTestFormatter(FormatJSON)
		require.NoError(t, New(f).Result("nothing to do", nil))
		var resp MessageResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		assert.Equal(t, "nothing to do", resp.Message)
	})
}

// =============================================================================
// Plain
// =============================================================================

func TestPlainEntries(t *testing.T) {
	f, out, _ := newTestFormatter(FormatPlain)
	require.NoError(t, New(f).Entries(EntriesView{Rows: []EntryRow{{Entry: testEntry(), Seconds: 90}}}))
	cols := strings.Split(strings.TrimSpace(out.String()), "\t")
	require.Len(t, cols, 8)
	assert.Equal(t, "2026-03-09", cols[1])
	assert.Equal(t, "00:01:30", cols[6])
	assert.Equal(t, "stopped", cols[7])
}

func TestPlainStatusIdle(t *testing.T) {
	f, out, _ := newTestFormatter(FormatPlain)
	require.NoError(t, New(f).Status(StatusView{Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "idle", lines[0])
	assert.Equal(t, "today\t2026-03-09\t00:00:00", lines[1])
}

func TestPlainError(t *testing.T) {
	f, _, errOut := newTestFormatter(FormatPlain)
	require.NoError(t, New(f).Error(errors.New("boom")))
	assert.Equal(t, "error: boom\n", errOut.String())
}
