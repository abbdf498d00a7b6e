package output

import (
	"time"

	"github.com/manav03panchal/timesheet/internal/billing"
	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/parser"
)

// JSONFormatter renders results as JSON documents.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// EntryOutput is an entry in JSON output.
type EntryOutput struct {
	ID              string  `json:"id"`
	ShortID         string  `json:"short_id"`
	Client          string  `json:"client"`
	ProjectCode     string  `json:"project_code"`
	TaskCode        string  `json:"task_code"`
	Description     string  `json:"description"`
	Comments        string  `json:"comments,omitempty"`
	WorkLocation    string  `json:"work_location,omitempty"`
	EntryDate       string  `json:"entry_date"`
	DurationSeconds int64   `json:"duration_seconds"`
	Duration        string  `json:"duration"`
	BillableHours   float64 `json:"billable_hours"`
	Running         bool    `json:"running"`
	StartedAt       string  `json:"started_at,omitempty"`
	Synced          bool    `json:"synced"`
}

// NewEntryOutput creates an EntryOutput from a row.
func NewEntryOutput(r EntryRow) *EntryOutput {
	e := r.Entry
	out := &EntryOutput{
		ID:              e.ID(),
		ShortID:         e.ShortID(),
		Client:          e.Client,
		ProjectCode:     e.ProjectCode,
		TaskCode:        e.TaskCode,
		Description:     e.Description,
		Comments:        e.Comments,
		WorkLocation:    e.WorkLocation,
		EntryDate:       FormatDate(e.EntryDate),
		DurationSeconds: r.Seconds,
		Duration:        parser.FormatDuration(r.Seconds),
		BillableHours:   billing.ConvertBillingHours(r.Seconds),
		Running:         e.Running,
		Synced:          e.Synced,
	}
	if e.StartedAt != nil {
		out.StartedAt = e.StartedAt.Format(time.RFC3339)
	}
	return out
}

func entryOutputs(rows []EntryRow) []*EntryOutput {
	out := make([]*EntryOutput, len(rows))
	for i, r := range rows {
		out[i] = NewEntryOutput(r)
	}
	return out
}

// StatusResponse represents the status output in JSON.
type StatusResponse struct {
	Status       string       `json:"status"`
	Date         string       `json:"date"`
	Running      *EntryOutput `json:"running,omitempty"`
	TodaySeconds int64        `json:"today_seconds"`
	TodayHours   float64      `json:"today_hours"`
}

// EntriesResponse represents an entry list in JSON.
type EntriesResponse struct {
	Entries      []*EntryOutput `json:"entries"`
	Count        int            `json:"count"`
	TotalSeconds int64          `json:"total_seconds"`
	TotalHours   float64        `json:"total_hours"`
}

// EntryResponse represents a single entry action in JSON.
type EntryResponse struct {
	Status  string         `json:"status"`
	Entry   *EntryOutput   `json:"entry"`
	Stopped []*EntryOutput `json:"stopped,omitempty"`
}

// UploadResponse represents upload rows in JSON.
type UploadResponse struct {
	From       string              `json:"from"`
	To         string              `json:"to"`
	Rows       []billing.UploadRow `json:"rows"`
	TotalHours float64             `json:"total_hours"`
}

// BillingOutput represents a billing manager in JSON.
type BillingOutput struct {
	ID          string `json:"id"`
	Client      string `json:"client"`
	ProjectCode string `json:"project_code"`
	TaskCode    string `json:"task_code"`
	BillingType string `json:"billing_type"`
	Archived    bool   `json:"archived"`
}

// SettingOutput represents a setting in JSON.
type SettingOutput struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// MessageResponse represents a message in JSON.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	Category   string `json:"category"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Status outputs status in JSON format.
func (j *JSONFormatter) Status(v StatusView) error {
	resp := StatusResponse{
		Status:       "idle",
		Date:         FormatDate(v.Date),
		TodaySeconds: v.TodaySeconds,
		TodayHours:   billing.ConvertBillingHours(v.TodaySeconds),
	}
	if v.Running != nil {
		resp.Status = "running"
		resp.Running = NewEntryOutput(*v.Running)
	}
	return j.JSON(resp)
}

// NewEntriesResponse builds the JSON document for a list of rows.
func NewEntriesResponse(rows []EntryRow) EntriesResponse {
	total := EntriesView{Rows: rows}.TotalSeconds()
	return EntriesResponse{
		Entries:      entryOutputs(rows),
		Count:        len(rows),
		TotalSeconds: total,
		TotalHours:   billing.ConvertBillingHours(total),
	}
}

// Entries outputs an entry list.
func (j *JSONFormatter) Entries(v EntriesView) error {
	return j.JSON(NewEntriesResponse(v.Rows))
}

// EntryChanged outputs an entry action.
func (j *JSONFormatter) EntryChanged(action string, row EntryRow, stopped []EntryRow) error {
	resp := EntryResponse{Status: action, Entry: NewEntryOutput(row)}
	if len(stopped) > 0 {
		resp.Stopped = entryOutputs(stopped)
	}
	return j.JSON(resp)
}

// Upload outputs upload rows.
func (j *JSONFormatter) Upload(v UploadView) error {
	rows := v.Rows
	if rows == nil {
		rows = []billing.UploadRow{}
	}
	var total float64
	for i := range rows {
		total += rows[i].Total()
	}
	return j.JSON(UploadResponse{
		From:       FormatDate(v.From),
		To:         FormatDate(v.To),
		Rows:       rows,
		TotalHours: billing.RoundTenths(total),
	})
}

// BillingManagers outputs billing managers.
func (j *JSONFormatter) BillingManagers(managers []*model.BillingManager) error {
	out := make([]BillingOutput, len(managers))
	for i, b := range managers {
		out[i] = BillingOutput{
			ID:          model.KeyID(b.Key),
			Client:      b.Client,
			ProjectCode: b.ProjectCode,
			TaskCode:    b.TaskCode,
			BillingType: b.BillingType,
			Archived:    b.Archived,
		}
	}
	return j.JSON(out)
}

// Goal outputs the goal report.
func (j *JSONFormatter) Goal(r billing.GoalReport) error {
	return j.JSON(r)
}

// Settings outputs stored settings.
func (j *JSONFormatter) Settings(settings []*model.Setting) error {
	out := make([]SettingOutput, len(settings))
	for i, s := range settings {
		out[i] = SettingOutput{Type: s.Type, Value: s.Value}
	}
	return j.JSON(out)
}

// Message outputs a message.
func (j *JSONFormatter) Message(level Level, text string) error {
	status := "ok"
	if level == LevelWarning {
		status = "warning"
	}
	return j.JSON(MessageResponse{Status: status, Message: text})
}

// Result outputs v, or the summary when v is nil.
func (j *JSONFormatter) Result(summary string, v any) error {
	if v == nil {
		return j.Message(LevelInfo, summary)
	}
	return j.JSON(v)
}

// Error outputs an error document on the main writer.
func (j *JSONFormatter) Error(err error) error {
	return j.JSON(ErrorResponse{
		Status:     "error",
		Error:      err.Error(),
		Category:   tserrors.Classify(err).String(),
		Suggestion: tserrors.GetSuggestion(err),
	})
}
