package storage

import (
	"github.com/manav03panchal/timesheet/internal/model"
)

// TimerRepo provides operations for the RunningTimer singleton.
type TimerRepo struct {
	db *DB
}

// NewTimerRepo creates a new running timer repository.
func NewTimerRepo(db *DB) *TimerRepo {
	return &TimerRepo{db: db}
}

// Get retrieves the running timer pointer, or nil if none is stored.
func (r *TimerRepo) Get() (*model.RunningTimer, error) {
	rt := &model.RunningTimer{}
	if err := r.db.Get(model.KeyRunningTimer, rt); err != nil {
		if IsErrKeyNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !rt.IsRunning() {
		return nil, nil
	}
	return rt, nil
}

// Commit writes the timer pointer and entries in a single transaction.
// A nil timer clears the pointer.
func (r *TimerRepo) Commit(timer *model.RunningTimer, entries ...*model.TimeEntry) error {
	return r.db.Update(func(tx *Tx) error {
		if timer == nil {
			if err := tx.Delete(model.KeyRunningTimer); err != nil {
				return err
			}
		} else {
			timer.Key = model.KeyRunningTimer
			if err := tx.Set(timer); err != nil {
				return err
			}
		}
		for _, e := range entries {
			if err := tx.Save(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear removes the running timer pointer.
func (r *TimerRepo) Clear() error {
	return r.Commit(nil)
}

// DayMarkerRepo provides operations for the DayMarker singleton.
type DayMarkerRepo struct {
	db *DB
}

// NewDayMarkerRepo creates a new day marker repository.
func NewDayMarkerRepo(db *DB) *DayMarkerRepo {
	return &DayMarkerRepo{db: db}
}

// Get returns the stored marker, or nil when none has been recorded.
func (r *DayMarkerRepo) Get() (*model.DayMarker, error) {
	m := &model.DayMarker{}
	if err := r.db.Get(model.KeyDayMarker, m); err != nil {
		if IsErrKeyNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// Save overwrites the marker.
func (r *DayMarkerRepo) Save(m *model.DayMarker) error {
	m.Key = model.KeyDayMarker
	return r.db.Set(m)
}
