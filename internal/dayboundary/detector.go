// Package dayboundary decides whether the calendar day has advanced, in a
// given timezone, since the new-day prompt was last acknowledged.
package dayboundary

import (
	"time"

	"github.com/manav03panchal/timesheet/internal/clock"
	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/model"
)

// dateLayout is the calendar-date projection compared across instants.
const dateLayout = "2006-01-02"

// MarkerStore persists the single day marker.
type MarkerStore interface {
	Get() (*model.DayMarker, error)
	Save(m *model.DayMarker) error
}

// Detector reports brand-new days against a stored marker.
type Detector struct {
	markers     MarkerStore
	clock       clock.Clock
	defaultZone string
}

// New creates a detector. defaultZone is used when callers pass an empty
// zone name; an empty defaultZone means the system zone.
func New(markers MarkerStore, clk clock.Clock, defaultZone string) *Detector {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Detector{markers: markers, clock: clk, defaultZone: defaultZone}
}

// IsBrandNewDay reports whether today's date in timeZone differs from the
// date of the last acknowledgement. With no marker it is always true. It
// never writes.
func (d *Detector) IsBrandNewDay(timeZone string) (bool, error) {
	marker, err := d.markers.Get()
	if err != nil {
		return false, err
	}
	if marker == nil {
		return true, nil
	}

	loc := d.Location(timeZone)
	last := marker.LastPromptAt.In(loc).Format(dateLayout)
	today := d.clock.Now().In(loc).Format(dateLayout)
	return last != today, nil
}

// Acknowledge records local midnight of today in timeZone as the last
// prompt instant and returns it.
func (d *Detector) Acknowledge(timeZone string) (time.Time, error) {
	midnight := clock.StartOfDay(d.clock.Now(), d.Location(timeZone))
	if err := d.markers.Save(model.NewDayMarker(midnight)); err != nil {
		return time.Time{}, err
	}
	logging.Debug("day acknowledged", logging.KeyTimezone, timeZone, "at", midnight.UTC())
	return midnight, nil
}

// LastAcknowledged returns the stored marker instant, or the zero time.
func (d *Detector) LastAcknowledged() (time.Time, error) {
	marker, err := d.markers.Get()
	if err != nil || marker == nil {
		return time.Time{}, err
	}
	return marker.LastPromptAt, nil
}

// Location resolves a zone name. Empty uses the default zone and unknown
// names fall back to UTC.
func (d *Detector) Location(timeZone string) *time.Location {
	if timeZone == "" {
		timeZone = d.defaultZone
	}
	return LoadLocation(timeZone)
}

// LoadLocation resolves an IANA zone name. Empty means time.Local; unknown
// names log a warning and return UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logging.Warn("unknown timezone, using UTC", logging.KeyTimezone, name, logging.KeyError, err)
		return time.UTC
	}
	return loc
}

// IsValidZone reports whether name is a loadable IANA zone.
func IsValidZone(name string) bool {
	_, err := time.LoadLocation(name)
	return err == nil
}
