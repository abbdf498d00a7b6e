package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manav03panchal/timesheet/internal/model"
)

// UploadRow is one weekly payroll line: hours per weekday for a unique
// client, project, task, work location and description.
type UploadRow struct {
	ID              string  `json:"id"`
	Client          string  `json:"client"`
	ProjectCode     string  `json:"projectCode"`
	TaskCode        string  `json:"taskCode"`
	TaskDescription string  `json:"taskDescription"`
	WorkLocation    string  `json:"workLocation,omitempty"`
	SunHours        float64 `json:"sunHours"`
	MonHours        float64 `json:"monHours"`
	TueHours        float64 `json:"tueHours"`
	WedHours        float64 `json:"wedHours"`
	ThuHours        float64 `json:"thuHours"`
	FriHours        float64 `json:"friHours"`
	SatHours        float64 `json:"satHours"`
}

// day returns the bucket for a weekday.
func (r *UploadRow) day(d time.Weekday) *float64 {
	switch d {
	case time.Sunday:
		return &r.SunHours
	case time.Monday:
		return &r.MonHours
	case time.Tuesday:
		return &r.TueHours
	case time.Wednesday:
		return &r.WedHours
	case time.Thursday:
		return &r.ThuHours
	case time.Friday:
		return &r.FriHours
	default:
		return &r.SatHours
	}
}

// Hours returns the hours booked on a weekday.
func (r *UploadRow) Hours(d time.Weekday) float64 {
	return *r.day(d)
}

// Total returns the hours across the week.
func (r *UploadRow) Total() float64 {
	var total float64
	for d := time.Sunday; d <= time.Saturday; d++ {
		total += r.Hours(d)
	}
	return RoundTenths(total)
}

func (r *UploadRow) empty() bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if r.Hours(d) > 0 {
			return false
		}
	}
	return true
}

// UploadOptions selects the entries that go into an upload.
type UploadOptions struct {
	From            time.Time
	To              time.Time
	Days            []time.Weekday
	IncludeComments bool
}

type rowKey struct {
	client, project, task, location, description string
}

// BuildUploadRows aggregates entries into weekly rows.
//
// Entries dated outside [From, To] by calendar day, on unselected weekdays,
// or without a client are skipped. Rows keep the order in which their first
// entry was seen and rows with no hours on any day are dropped. newID
// generates row ids and defaults to random uuids.
func BuildUploadRows(entries []*model.TimeEntry, opts UploadOptions, newID func() string) []UploadRow {
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}

	from := opts.From.Format("2006-01-02")
	to := opts.To.Format("2006-01-02")
	selected := make(map[time.Weekday]bool, len(opts.Days))
	for _, d := range opts.Days {
		selected[d] = true
	}

	var rows []*UploadRow
	index := make(map[rowKey]*UploadRow)

	for _, e := range entries {
		date := e.EntryDate.Format("2006-01-02")
		if date < from || date > to {
			continue
		}
		weekday := e.EntryDate.Weekday()
		if !selected[weekday] {
			continue
		}
		if strings.TrimSpace(e.Client) == "" {
			continue
		}

		desc := UploadDescription(e, opts.IncludeComments)
		key := rowKey{e.Client, e.ProjectCode, e.TaskCode, e.WorkLocation, desc}
		row, ok := index[key]
		if !ok {
			row = &UploadRow{
				ID:              newID(),
				Client:          e.Client,
				ProjectCode:     e.ProjectCode,
				TaskCode:        e.TaskCode,
				TaskDescription: desc,
				WorkLocation:    e.WorkLocation,
			}
			index[key] = row
			rows = append(rows, row)
		}

		bucket := row.day(weekday)
		*bucket = RoundTenths(*bucket + ConvertBillingHours(e.DurationSeconds))
	}

	out := make([]UploadRow, 0, len(rows))
	for _, r := range rows {
		if !r.empty() {
			out = append(out, *r)
		}
	}
	return out
}

// UploadDescription returns the trimmed description, joined with the
// trimmed comments by " - " when includeComments is set.
func UploadDescription(e *model.TimeEntry, includeComments bool) string {
	desc := strings.TrimSpace(e.Description)
	if !includeComments {
		return desc
	}
	parts := make([]string, 0, 2)
	if desc != "" {
		parts = append(parts, desc)
	}
	if c := strings.TrimSpace(e.Comments); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, " - ")
}
