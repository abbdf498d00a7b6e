// Package timesheet manages the entries of a day: adding, editing,
// deleting, copying the previous day forward and building upload rows.
package timesheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/timesheet/internal/billing"
	"github.com/manav03panchal/timesheet/internal/clock"
	"github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/parser"
	"github.com/manav03panchal/timesheet/internal/storage"
	"github.com/manav03panchal/timesheet/internal/timer"
	"github.com/manav03panchal/timesheet/internal/validate"
)

// copyMarkerTTL keeps a copy-forward from running twice in a day.
const copyMarkerTTL = 24 * time.Hour

// Service is the entry-level API used by commands and the dashboard.
type Service struct {
	entries  *storage.EntryRepo
	settings *storage.SettingRepo
	expiring *storage.ExpiringRepo
	timer    *timer.Service
	clock    clock.Clock
	loc      *time.Location
}

// NewService creates a timesheet service. Entry dates are local midnights
// in loc.
func NewService(entries *storage.EntryRepo, settings *storage.SettingRepo, expiring *storage.ExpiringRepo,
	timers *timer.Service, clk clock.Clock, loc *time.Location) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		entries:  entries,
		settings: settings,
		expiring: expiring,
		timer:    timers,
		clock:    clk,
		loc:      loc,
	}
}

// Location returns the zone entry dates are projected in.
func (s *Service) Location() *time.Location { return s.loc }

// Today returns local midnight of the current day.
func (s *Service) Today() time.Time {
	return clock.StartOfDay(s.clock.Now(), s.loc)
}

// NewEntry is the input for Add.
type NewEntry struct {
	Client       string
	ProjectCode  string
	TaskCode     string
	Description  string
	Comments     string
	WorkLocation string
	Duration     string    // HH:MM:SS or shorthand; empty means zero
	Date         time.Time // zero means today
}

// EntryPatch holds the fields to change on an entry. Nil fields are kept.
type EntryPatch struct {
	Client       *string
	ProjectCode  *string
	TaskCode     *string
	Description  *string
	Comments     *string
	WorkLocation *string
	Duration     *string
	Date         *time.Time
}

func (in *NewEntry) clean() {
	in.Client = validate.Line(in.Client)
	in.ProjectCode = validate.Line(in.ProjectCode)
	in.TaskCode = validate.Line(in.TaskCode)
	in.Description = validate.Note(in.Description)
	in.Comments = validate.Note(in.Comments)
	in.WorkLocation = validate.Line(in.WorkLocation)
}

func (in *NewEntry) validate() error {
	if err := validate.Client(in.Client); err != nil {
		return err
	}
	if err := validate.Code("project", in.ProjectCode); err != nil {
		return err
	}
	if err := validate.Code("task", in.TaskCode); err != nil {
		return err
	}
	if err := validate.Code("location", in.WorkLocation); err != nil {
		return err
	}
	if err := validate.Text("description", in.Description); err != nil {
		return err
	}
	return validate.Text("comments", in.Comments)
}

func fieldsOf(e *model.TimeEntry) *NewEntry {
	return &NewEntry{
		Client:       e.Client,
		ProjectCode:  e.ProjectCode,
		TaskCode:     e.TaskCode,
		Description:  e.Description,
		Comments:     e.Comments,
		WorkLocation: e.WorkLocation,
	}
}

// Empty reports whether the patch changes nothing.
func (p EntryPatch) Empty() bool {
	return p.Client == nil && p.ProjectCode == nil && p.TaskCode == nil &&
		p.Description == nil && p.Comments == nil && p.WorkLocation == nil &&
		p.Duration == nil && p.Date == nil
}

func resolveDuration(input string) (int64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}
	return parser.ResolveSeconds(input)
}

// Add validates and stores a new entry, starting its timer when start is
// set.
func (s *Service) Add(in NewEntry, start bool) (*model.TimeEntry, error) {
	in.clean()
	if err := in.validate(); err != nil {
		return nil, err
	}
	seconds, err := resolveDuration(in.Duration)
	if err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = s.clock.Now()
	}

	e := model.NewTimeEntry(in.Client, in.ProjectCode, in.TaskCode, in.Description, clock.StartOfDay(date, s.loc))
	e.Comments = in.Comments
	e.WorkLocation = in.WorkLocation
	if e.WorkLocation == "" {
		e.WorkLocation = s.settings.String(model.SettingWorkLocation, "")
	}
	e.DurationSeconds = seconds
	e.CreatedAt = s.clock.Now().UTC()

	if err := s.entries.Create(e); err != nil {
		return nil, err
	}
	logging.Debug("entry added", logging.KeyEntry, e.ID(), logging.KeyClient, e.Client)

	if start {
		res, err := s.timer.Start(e.Key)
		if err != nil {
			return nil, err
		}
		return res.Started, nil
	}
	return e, nil
}

// Resolve finds an entry by reference.
func (s *Service) Resolve(ref string) (*model.TimeEntry, error) {
	e, err := s.entries.Resolve(ref)
	if err == nil {
		return e, nil
	}
	if storage.IsErrKeyNotFound(err) {
		return nil, fmt.Errorf("%s: %w", ref, errors.ErrEntryNotFound)
	}
	var amb *storage.AmbiguousMatchError
	if errors.As(err, &amb) {
		return nil, fmt.Errorf("%s: %w", amb.Error(), errors.ErrAmbiguousEntry)
	}
	return nil, err
}

// Day returns the entries of date's calendar day, newest first.
func (s *Service) Day(date time.Time) ([]*model.TimeEntry, error) {
	entries, err := s.entries.ListByDate(clock.StartOfDay(date, s.loc))
	if err != nil {
		return nil, err
	}
	storage.SortNewestFirst(entries)
	return entries, nil
}

// Range returns the entries dated from..to inclusive, oldest first.
func (s *Service) Range(from, to time.Time) ([]*model.TimeEntry, error) {
	return s.entries.ListByRange(clock.StartOfDay(from, s.loc), clock.StartOfDay(to, s.loc))
}

// Edit applies a patch. Duration changes go through the timer so a running
// entry restarts its interval from the new value.
func (s *Service) Edit(key string, patch EntryPatch) (*model.TimeEntry, error) {
	var seconds int64
	if patch.Duration != nil {
		var err error
		if seconds, err = parser.ResolveSeconds(*patch.Duration); err != nil {
			return nil, err
		}
	}

	e, err := s.entries.Get(key)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return nil, fmt.Errorf("%s: %w", model.KeyID(key), errors.ErrEntryNotFound)
		}
		return nil, err
	}

	set := func(dst *string, src *string, clean func(string) string) {
		if src != nil {
			*dst = clean(*src)
		}
	}
	set(&e.Client, patch.Client, validate.Line)
	set(&e.ProjectCode, patch.ProjectCode, validate.Line)
	set(&e.TaskCode, patch.TaskCode, validate.Line)
	set(&e.Description, patch.Description, validate.Note)
	set(&e.Comments, patch.Comments, validate.Note)
	set(&e.WorkLocation, patch.WorkLocation, validate.Line)
	if err := fieldsOf(e).validate(); err != nil {
		return nil, err
	}
	if patch.Date != nil {
		e.EntryDate = clock.StartOfDay(*patch.Date, s.loc)
	}

	if err := s.entries.Update(e); err != nil {
		return nil, err
	}
	if patch.Duration != nil {
		return s.timer.SetDuration(e.Key, seconds)
	}
	return e, nil
}

// Delete removes an entry, stopping it first when it is running.
func (s *Service) Delete(key string) error {
	e, err := s.entries.Get(key)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return fmt.Errorf("%s: %w", model.KeyID(key), errors.ErrEntryNotFound)
		}
		return err
	}
	if e.Running {
		if _, err := s.timer.Stop(key); err != nil {
			return err
		}
	}
	if err := s.entries.Delete(key); err != nil {
		return err
	}
	logging.Debug("entry deleted", logging.KeyEntry, e.ID())
	return nil
}

func copyMarkerName(day time.Time) string {
	return "copyforward:" + day.Format("2006-01-02")
}

// CopyForward copies the most recent earlier day's entries into today
// when the copytimesheet setting is on and today has no entries yet.
// Copies start at zero and are not running. It runs at most once a day.
func (s *Service) CopyForward() ([]*model.TimeEntry, error) {
	if !s.settings.Bool(model.SettingCopyTimesheet, false) {
		return nil, nil
	}
	today := s.Today()
	marker := copyMarkerName(today)
	if _, done, err := s.expiring.GetWithExpiration(marker); err != nil || done {
		return nil, err
	}

	existing, err := s.entries.ListByDate(today)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, nil
	}

	prev, err := s.entries.LatestDateBefore(today)
	if err != nil || prev.IsZero() {
		return nil, err
	}
	source, err := s.entries.ListByRange(prev, prev)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	copies := make([]*model.TimeEntry, 0, len(source))
	for i, src := range source {
		c := model.NewTimeEntry(src.Client, src.ProjectCode, src.TaskCode, src.Description, today)
		c.Comments = src.Comments
		c.WorkLocation = src.WorkLocation
		// Keep the source order when sorting by creation time.
		c.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		if err := s.entries.Create(c); err != nil {
			return copies, err
		}
		copies = append(copies, c)
	}

	if err := s.expiring.SetWithExpiration(marker, "true", copyMarkerTTL); err != nil {
		return copies, err
	}
	logging.Info("copied previous day forward", "from", prev.Format("2006-01-02"), logging.KeyCount, len(copies))
	return copies, nil
}

// UploadRows builds the weekly upload rows for from..to restricted to
// days, honouring the includecommentsonupload setting.
func (s *Service) UploadRows(from, to time.Time, days []time.Weekday) ([]billing.UploadRow, error) {
	entries, err := s.Range(from, to)
	if err != nil {
		return nil, err
	}
	opts := billing.UploadOptions{
		From:            clock.StartOfDay(from, s.loc),
		To:              clock.StartOfDay(to, s.loc),
		Days:            days,
		IncludeComments: s.settings.Bool(model.SettingIncludeCommentsOnUpload, false),
	}
	return billing.BuildUploadRows(entries, opts, nil), nil
}

// DayTotal returns the effective seconds logged on date, counting running
// time up to now.
func (s *Service) DayTotal(date time.Time) (int64, error) {
	entries, err := s.Day(date)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if e.Running {
			elapsed, err := s.timer.CurrentElapsed(e.Key)
			if err != nil {
				return 0, err
			}
			total += elapsed
			continue
		}
		total += e.DurationSeconds
	}
	return total, nil
}
