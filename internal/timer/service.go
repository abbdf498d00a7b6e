// Package timer owns the running timer. Service is the only writer of the
// durable running-timer pointer and keeps at most one entry running.
package timer

import (
	"fmt"
	"time"

	"github.com/manav03panchal/timesheet/internal/clock"
	"github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/storage"
)

// EntryStore reads time entries.
type EntryStore interface {
	Get(key string) (*model.TimeEntry, error)
	ListRunning() ([]*model.TimeEntry, error)
}

// PointerStore persists the running-timer pointer together with the
// entries it affects, in one transaction.
type PointerStore interface {
	Get() (*model.RunningTimer, error)
	Commit(timer *model.RunningTimer, entries ...*model.TimeEntry) error
}

// Service starts, stops and reconciles running entries.
type Service struct {
	entries EntryStore
	pointer PointerStore
	clock   clock.Clock
}

// NewService creates a timer service.
func NewService(entries EntryStore, pointer PointerStore, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{entries: entries, pointer: pointer, clock: clk}
}

// StartResult describes a start transition.
type StartResult struct {
	Started *model.TimeEntry
	Stopped []*model.TimeEntry
}

// ReconcileResult describes what a reconcile pass found and fixed.
type ReconcileResult struct {
	Running      *model.TimeEntry
	Elapsed      int64 // effective duration of Running at the pass
	Stopped      []*model.TimeEntry
	ClearedStale bool
	Adopted      bool
}

func (s *Service) load(key string) (*model.TimeEntry, error) {
	e, err := s.entries.Get(key)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return nil, fmt.Errorf("%s: %w", model.KeyID(key), errors.ErrEntryNotFound)
		}
		return nil, err
	}
	return e, nil
}

// startOf returns the authoritative start of a running entry: the pointer
// instant when the pointer refers to it, else its own StartedAt.
func startOf(e *model.TimeEntry, ptr *model.RunningTimer) *time.Time {
	if ptr.PointsAt(e.Key) {
		t := ptr.StartedAt
		return &t
	}
	return e.StartedAt
}

func (s *Service) stopEntry(e *model.TimeEntry, ptr *model.RunningTimer, now time.Time) {
	var elapsed int64
	if start := startOf(e, ptr); start != nil {
		elapsed = model.ElapsedSeconds(*start, now)
	}
	e.MarkStopped(elapsed)
}

// Start makes key the only running entry. Other running entries are
// stopped with their elapsed time folded in, all in one commit. Starting
// the running entry again changes nothing.
func (s *Service) Start(key string) (*StartResult, error) {
	entry, err := s.load(key)
	if err != nil {
		return nil, err
	}
	ptr, err := s.pointer.Get()
	if err != nil {
		return nil, err
	}
	running, err := s.entries.ListRunning()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()

	var stopped []*model.TimeEntry
	for _, other := range running {
		if other.Key == entry.Key {
			continue
		}
		s.stopEntry(other, ptr, now)
		stopped = append(stopped, other)
	}

	if entry.Running && ptr.PointsAt(entry.Key) && len(stopped) == 0 {
		return &StartResult{Started: entry}, nil
	}

	start := now
	if entry.Running {
		if st := startOf(entry, ptr); st != nil {
			start = *st
		}
	}
	entry.MarkRunning(start)

	commit := append([]*model.TimeEntry{entry}, stopped...)
	if err := s.pointer.Commit(model.NewRunningTimer(entry.Key, start), commit...); err != nil {
		return nil, err
	}

	for _, e := range stopped {
		logging.Info("timer stopped", logging.KeyEntry, e.ID(), "duration", e.DurationSeconds)
	}
	logging.Info("timer started", logging.KeyEntry, entry.ID())
	return &StartResult{Started: entry, Stopped: stopped}, nil
}

// Stop folds the elapsed time since the durable start into the entry and
// clears the pointer. Stopping a stopped entry changes nothing.
func (s *Service) Stop(key string) (*model.TimeEntry, error) {
	entry, err := s.load(key)
	if err != nil {
		return nil, err
	}
	ptr, err := s.pointer.Get()
	if err != nil {
		return nil, err
	}

	if !entry.Running {
		if ptr.PointsAt(entry.Key) {
			if err := s.pointer.Commit(nil); err != nil {
				return nil, err
			}
		}
		return entry, nil
	}

	s.stopEntry(entry, ptr, s.clock.Now())

	// The pointer survives only if it refers to some other entry.
	keep := ptr
	if ptr.PointsAt(entry.Key) {
		keep = nil
	}
	if err := s.pointer.Commit(keep, entry); err != nil {
		return nil, err
	}
	logging.Info("timer stopped", logging.KeyEntry, entry.ID(), "duration", entry.DurationSeconds)
	return entry, nil
}

// StopAll stops every running entry and clears the pointer.
func (s *Service) StopAll() ([]*model.TimeEntry, error) {
	ptr, err := s.pointer.Get()
	if err != nil {
		return nil, err
	}
	running, err := s.entries.ListRunning()
	if err != nil {
		return nil, err
	}
	if len(running) == 0 && ptr == nil {
		return nil, nil
	}

	now := s.clock.Now()
	for _, e := range running {
		s.stopEntry(e, ptr, now)
	}
	if err := s.pointer.Commit(nil, running...); err != nil {
		return nil, err
	}
	logging.Info("all timers stopped", logging.KeyCount, len(running))
	return running, nil
}

// CurrentElapsed returns the effective duration of an entry now.
func (s *Service) CurrentElapsed(key string) (int64, error) {
	entry, err := s.load(key)
	if err != nil {
		return 0, err
	}
	ptr, err := s.pointer.Get()
	if err != nil {
		return 0, err
	}
	return s.effective(entry, ptr), nil
}

func (s *Service) effective(e *model.TimeEntry, ptr *model.RunningTimer) int64 {
	total := e.DurationSeconds
	if total < 0 {
		total = 0
	}
	if !e.Running {
		return total
	}
	if start := startOf(e, ptr); start != nil {
		total += model.ElapsedSeconds(*start, s.clock.Now())
	}
	return total
}

// SetDuration replaces an entry's accumulated duration. For a running
// entry the new value becomes the frozen base and the durable start
// resets to now.
func (s *Service) SetDuration(key string, seconds int64) (*model.TimeEntry, error) {
	if seconds < 0 {
		return nil, errors.NewValidationError("duration", fmt.Sprint(seconds),
			"duration cannot be negative", errors.ErrInvalidDuration)
	}
	entry, err := s.load(key)
	if err != nil {
		return nil, err
	}
	ptr, err := s.pointer.Get()
	if err != nil {
		return nil, err
	}

	entry.DurationSeconds = seconds
	if entry.Running {
		now := s.clock.Now()
		entry.MarkRunning(now)
		ptr = model.NewRunningTimer(entry.Key, now)
	}
	if err := s.pointer.Commit(ptr, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Running returns the entry the pointer refers to with its effective
// duration, or nil when no timer runs. A stale pointer reads as nil.
func (s *Service) Running() (*model.TimeEntry, int64, error) {
	ptr, err := s.pointer.Get()
	if err != nil || ptr == nil {
		return nil, 0, err
	}
	entry, err := s.entries.Get(ptr.EntryKey)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			logging.Warn("running timer points at a missing entry", logging.KeyEntry, model.KeyID(ptr.EntryKey))
			return nil, 0, nil
		}
		return nil, 0, err
	}
	if !entry.Running {
		return nil, 0, nil
	}
	return entry, s.effective(entry, ptr), nil
}

// Reconcile restores the single-running invariant after a restart,
// restore or crash. A pointer to a missing or stopped entry is cleared. A
// running entry without a pointer is adopted, latest start winning, and
// any other running entries are stopped. Durations of the winner are not
// touched, so a later Stop counts the interval once.
func (s *Service) Reconcile() (*ReconcileResult, error) {
	defer logging.LogOperation("reconcile", time.Now())

	ptr, err := s.pointer.Get()
	if err != nil {
		return nil, err
	}
	running, err := s.entries.ListRunning()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	res := &ReconcileResult{}

	var winner *model.TimeEntry
	if ptr != nil {
		for _, e := range running {
			if ptr.PointsAt(e.Key) {
				winner = e
				break
			}
		}
		if winner == nil {
			logging.Warn("clearing stale running timer", logging.KeyEntry, model.KeyID(ptr.EntryKey))
			res.ClearedStale = true
			ptr = nil
		}
	}

	if winner == nil {
		for _, e := range running {
			if winner == nil || startedAfter(e, winner) {
				winner = e
			}
		}
		if winner != nil {
			res.Adopted = true
		}
	}

	var changed []*model.TimeEntry
	for _, e := range running {
		if e == winner {
			continue
		}
		s.stopEntry(e, ptr, now)
		changed = append(changed, e)
	}
	res.Stopped = changed

	newPtr := ptr
	if res.Adopted {
		if winner.StartedAt == nil {
			winner.MarkRunning(now)
			changed = append(changed, winner)
		}
		newPtr = model.NewRunningTimer(winner.Key, *winner.StartedAt)
		logging.Info("adopted running entry", logging.KeyEntry, winner.ID())
	}

	if res.ClearedStale || res.Adopted || len(changed) > 0 {
		if err := s.pointer.Commit(newPtr, changed...); err != nil {
			return nil, err
		}
	}

	if winner != nil {
		res.Running = winner
		res.Elapsed = s.effective(winner, newPtr)
	}
	return res, nil
}

func startedAfter(a, b *model.TimeEntry) bool {
	if a.StartedAt == nil {
		return false
	}
	if b.StartedAt == nil {
		return true
	}
	return a.StartedAt.After(*b.StartedAt)
}
