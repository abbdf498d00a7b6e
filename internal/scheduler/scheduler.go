// Package scheduler runs the periodic tick for the daemon.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/manav03panchal/timesheet/internal/clock"
	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/storage"
)

// DefaultSleepThreshold is the tick gap treated as a system sleep.
const DefaultSleepThreshold = time.Hour

// Task is one step of a tick, run against an open store.
type Task struct {
	Name string
	Run  func(ctx context.Context, db *storage.DB) error
}

// Opener opens the record store for a single tick.
type Opener func() (*storage.DB, error)

// TickStatus says what a tick did.
type TickStatus int

const (
	// TickRan means every task was attempted.
	TickRan TickStatus = iota
	// TickBusy means the previous tick was still running.
	TickBusy
	// TickStale means the tick followed a sleep gap and was skipped.
	TickStale
	// TickLocked means another process held the store.
	TickLocked
)

func (s TickStatus) String() string {
	switch s {
	case TickRan:
		return "ran"
	case TickBusy:
		return "busy"
	case TickStale:
		return "stale"
	case TickLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Stats summarises the ticks seen so far.
type Stats struct {
	Ticks     int       `json:"ticks"`
	Skipped   int       `json:"skipped"`
	Failures  int       `json:"failures"`
	LastTick  time.Time `json:"last_tick,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Scheduler manages the periodic tick using cron.
type Scheduler struct {
	cron           *cron.Cron
	open           Opener
	tasks          []Task
	interval       time.Duration
	sleepThreshold time.Duration
	clock          clock.Clock
	observer       func(TickStatus, Stats)

	running atomic.Bool

	mu       sync.Mutex
	lastTick time.Time
	stats    Stats
}

// NewScheduler creates a scheduler that ticks every interval.
func NewScheduler(open Opener, interval time.Duration, tasks ...Task) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		open:           open,
		tasks:          tasks,
		interval:       interval,
		sleepThreshold: DefaultSleepThreshold,
		clock:          clock.Real{},
	}
}

// SetSleepThreshold overrides the sleep gap threshold.
func (s *Scheduler) SetSleepThreshold(d time.Duration) {
	if d > 0 {
		s.sleepThreshold = d
	}
}

// SetClock replaces the clock used for gap detection.
func (s *Scheduler) SetClock(c clock.Clock) {
	s.clock = c
}

// SetObserver registers fn to be called after every tick, skipped or not.
func (s *Scheduler) SetObserver(fn func(TickStatus, Stats)) {
	s.observer = fn
}

// Spec returns the cron spec for the tick.
func (s *Scheduler) Spec() string {
	return "@every " + s.interval.String()
}

// Start schedules the tick and starts cron.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("invalid tick interval %s", s.interval)
	}
	s.mu.Lock()
	s.lastTick = s.clock.Now()
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(s.Spec(), func() {
		s.Tick(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule tick: %w", err)
	}
	s.cron.Start()

	logging.Info("scheduler started", "spec", s.Spec())
	return nil
}

// Stop stops cron and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	logging.Info("scheduler stopped")
}

// Tick runs every task once unless a tick is already in progress or the
// previous tick was longer ago than the sleep threshold. Task errors are
// logged and counted, and the first is returned.
func (s *Scheduler) Tick(ctx context.Context) (TickStatus, error) {
	if !s.running.CompareAndSwap(false, true) {
		logging.Debug("tick skipped, previous tick still running")
		s.record(TickBusy, nil)
		return TickBusy, nil
	}
	defer s.running.Store(false)

	now := s.clock.Now()
	s.mu.Lock()
	gap := now.Sub(s.lastTick)
	stale := !s.lastTick.IsZero() && gap > s.sleepThreshold
	s.lastTick = now
	s.mu.Unlock()

	if stale {
		logging.Info("skipping stale tick after sleep", "gap", gap.Round(time.Second).String())
		s.record(TickStale, nil)
		return TickStale, nil
	}

	ctx = logging.WithRequestID(ctx, logging.GenerateRequestID())
	log := logging.FromContext(ctx)

	db, err := s.open()
	if err != nil {
		if errors.Is(err, storage.ErrDatabaseBusy) {
			log.Infow("tick skipped, store in use")
			s.record(TickLocked, nil)
			return TickLocked, nil
		}
		s.record(TickRan, err)
		return TickRan, fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	var firstErr error
	for _, task := range s.tasks {
		start := time.Now()
		if err := task.Run(ctx, db); err != nil {
			log.Warnw("tick task failed", logging.KeyOperation, task.Name, logging.KeyError, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", task.Name, err)
			}
			continue
		}
		log.Debugw("tick task done", logging.KeyOperation, task.Name,
			logging.KeyDuration, time.Since(start).Milliseconds())
	}
	s.record(TickRan, firstErr)
	return TickRan, firstErr
}

func (s *Scheduler) record(status TickStatus, err error) {
	s.mu.Lock()
	if status != TickRan {
		s.stats.Skipped++
	} else {
		s.stats.Ticks++
		s.stats.LastTick = s.lastTick
		if err != nil {
			s.stats.Failures++
			s.stats.LastError = err.Error()
		}
	}
	stats := s.stats
	s.mu.Unlock()

	if s.observer != nil {
		s.observer(status, stats)
	}
}

// Stats returns a copy of the tick counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Entries returns all scheduled entries.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextRun returns the next scheduled tick, or the zero time before Start.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}
