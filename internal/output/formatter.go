// Package output renders command results as styled text, JSON or plain
// tab-separated lines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/manav03panchal/timesheet/internal/billing"
	"github.com/manav03panchal/timesheet/internal/model"
)

// Format represents the output format type.
type Format string

const (
	FormatCLI   Format = "cli"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCLI, FormatJSON, FormatPlain:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (use cli, json or plain)", s)
}

// ColorMode represents the color output mode.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(s); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	}
	return "", fmt.Errorf("unknown color mode %q (use auto, always or never)", s)
}

// Formatter holds the destination and mode shared by every renderer.
type Formatter struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Format    Format
	ColorMode ColorMode
}

// NewFormatter creates a new formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Format:    FormatCLI,
		ColorMode: ColorAuto,
	}
}

// IsColorEnabled returns true if color output is enabled.
func (f *Formatter) IsColorEnabled() bool {
	switch f.ColorMode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if w, ok := f.Writer.(*os.File); ok {
			return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
		}
		return false
	}
}

// Printf outputs formatted text.
func (f *Formatter) Printf(format string, a ...any) {
	fmt.Fprintf(f.Writer, format, a...)
}

// Println outputs text with a newline.
func (f *Formatter) Println(a ...any) {
	fmt.Fprintln(f.Writer, a...)
}

// JSON outputs v as indented JSON.
func (f *Formatter) JSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EntryRow is an entry with its effective duration at render time.
type EntryRow struct {
	Entry   *model.TimeEntry
	Seconds int64
}

// StatusView is the running entry and the day's total.
type StatusView struct {
	Date         time.Time
	Running      *EntryRow
	TodaySeconds int64
	DecimalMark  string
}

// EntriesView is a list of entries for a day or range.
type EntriesView struct {
	Title        string
	Rows         []EntryRow
	ShowComments bool
	DecimalMark  string
}

// TotalSeconds sums the rows.
func (v EntriesView) TotalSeconds() int64 {
	var total int64
	for _, r := range v.Rows {
		total += r.Seconds
	}
	return total
}

// UploadView is the weekly upload table.
type UploadView struct {
	From        time.Time
	To          time.Time
	Rows        []billing.UploadRow
	DecimalMark string
}

// Level is a message severity.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
)

// Renderer prints command results in one format.
type Renderer interface {
	Status(v StatusView) error
	Entries(v EntriesView) error
	// EntryChanged reports an action ("added", "started", ...) on row.
	// stopped lists entries stopped as a side effect.
	EntryChanged(action string, row EntryRow, stopped []EntryRow) error
	Upload(v UploadView) error
	BillingManagers(managers []*model.BillingManager) error
	Goal(report billing.GoalReport) error
	Settings(settings []*model.Setting) error
	Message(level Level, text string) error
	// Result prints summary as text, or v as data in JSON.
	Result(summary string, v any) error
	Error(err error) error
}

// New returns the renderer for f.Format.
func New(f *Formatter) Renderer {
	switch f.Format {
	case FormatJSON:
		return NewJSONFormatter(f)
	case FormatPlain:
		return NewPlainFormatter(f)
	default:
		return NewCLIFormatter(f)
	}
}

// FormatDate formats a calendar date.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDay formats a date with its weekday for headings.
func FormatDay(t time.Time) string {
	return t.Format("Mon Jan 2, 2006")
}
