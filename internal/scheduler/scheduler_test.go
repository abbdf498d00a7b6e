package scheduler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/timesheet/internal/backup"
	"github.com/manav03panchal/timesheet/internal/clock"
	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/storage"
)

// diskOpener opens a store in a temp dir, the way the daemon opens the real
// one on each tick.
func diskOpener(t *testing.T) (Opener, string) {
	dir := t.TempDir()
	return func() (*storage.DB, error) {
		return storage.Open(storage.Options{Path: dir})
	}, dir
}

func withDB(t *testing.T, dir string, fn func(db *storage.DB)) {
	db, err := storage.Open(storage.Options{Path: dir})
	require.NoError(t, err)
	defer db.Close()
	fn(db)
}

func countingTask(name string, n *int32, err error) Task {
	return Task{Name: name, Run: func(ctx context.Context, db *storage.DB) error {
		atomic.AddInt32(n, 1)
		return err
	}}
}

// =============================================================================
// Scheduler Tests
// =============================================================================

func TestNewScheduler(t *testing.T) {
	open, _ := diskOpener(t)
	s := NewScheduler(open, 5*time.Minute)
	assert.NotNil(t, s.cron)
	assert.Equal(t, "@every 5m0s", s.Spec())
	assert.True(t, s.NextRun().IsZero())
}

func TestSchedulerStartStop(t *testing.T) {
	open, _ := diskOpener(t)

	t.Run("schedules_one_entry", func(t *testing.T) {
		s := NewScheduler(open, time.Minute)
		require.NoError(t, s.Start(context.Background()))
		assert.Len(t, s.Entries(), 1)
		assert.False(t, s.NextRun().IsZero())
		s.Stop()
	})

	t.Run("rejects_zero_interval", func(t *testing.T) {
		s := NewScheduler(open, 0)
		assert.Error(t, s.Start(context.Background()))
	})
}

func TestTick(t *testing.T) {
	t.Run("runs_every_task", func(t *testing.T) {
		open, _ := diskOpener(t)
		var a, b int32
		s := NewScheduler(open, time.Minute, countingTask("a", &a, nil), countingTask("b", &b, nil))

		status, err := s.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, TickRan, status)
		assert.Equal(t, int32(1), a)
		assert.Equal(t, int32(1), b)
		assert.Equal(t, 1, s.Stats().Ticks)
	})

	t.Run("failing_task_does_not_stop_the_rest", func(t *testing.T) {
		open, _ := diskOpener(t)
		var a, b int32
		boom := errors.New("boom")
		s := NewScheduler(open, time.Minute, countingTask("a", &a, boom), countingTask("b", &b, nil))

		status, err := s.Tick(context.Background())
		assert.Equal(t, TickRan, status)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int32(1), b)

		stats := s.Stats()
		assert.Equal(t, 1, stats.Failures)
		assert.Contains(t, stats.LastError, "a: boom")
	})

	t.Run("skips_after_sleep_gap", func(t *testing.T) {
		open, _ := diskOpener(t)
		var n int32
		clk := clock.NewMock(time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))
		s := NewScheduler(open, 5*time.Minute, countingTask("a", &n, nil))
		s.SetClock(clk)

		_, err := s.Tick(context.Background())
		require.NoError(t, err)

		clk.Advance(2 * time.Hour)
		status, err := s.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, TickStale, status)
		assert.Equal(t, int32(1), n)

		clk.Advance(5 * time.Minute)
		status, _ = s.Tick(context.Background())
		assert.Equal(t, TickRan, status)
		assert.Equal(t, int32(2), n)
		assert.Equal(t, 1, s.Stats().Skipped)
	})

	t.Run("custom_sleep_threshold", func(t *testing.T) {
		open, _ := diskOpener(t)
		clk := clock.NewMock(time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))
		s := NewScheduler(open, time.Minute)
		s.SetClock(clk)
		s.SetSleepThreshold(10 * time.Minute)

		s.Tick(context.Background())
		clk.Advance(11 * time.Minute)
		status, _ := s.Tick(context.Background())
		assert.Equal(t, TickStale, status)
	})

	t.Run("reentrant_tick_is_skipped", func(t *testing.T) {
		open, _ := diskOpener(t)
		entered := make(chan struct{})
		release := make(chan struct{})
		s := NewScheduler(open, time.Minute, Task{Name: "slow", Run: func(ctx context.Context, db *storage.DB) error {
			close(entered)
			<-release
			return nil
		}})

		done := make(chan TickStatus)
		go func() {
			status, _ := s.Tick(context.Background())
			done <- status
		}()
		<-entered

		status, err := s.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, TickBusy, status)

		close(release)
		assert.Equal(t, TickRan, <-done)
	})

	t.Run("locked_store_is_skipped", func(t *testing.T) {
		var n int32
		s := NewScheduler(func() (*storage.DB, error) {
			return nil, fmt.Errorf("%w: /tmp/db", storage.ErrDatabaseBusy)
		}, time.Minute, countingTask("a", &n, nil))

		status, err := s.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, TickLocked, status)
		assert.Zero(t, n)
	})

	t.Run("open_failure_is_returned", func(t *testing.T) {
		s := NewScheduler(func() (*storage.DB, error) {
			return nil, errors.New("disk gone")
		}, time.Minute)

		_, err := s.Tick(context.Background())
		assert.ErrorContains(t, err, "disk gone")
	})
}

func TestTickStatusString(t *testing.T) {
	assert.Equal(t, "ran", TickRan.String())
	assert.Equal(t, "busy", TickBusy.String())
	assert.Equal(t, "stale", TickStale.String())
	assert.Equal(t, "locked", TickLocked.String())
	assert.Equal(t, "unknown", TickStatus(42).String())
}

// =============================================================================
// Task Tests
// =============================================================================

func TestReconcileTask(t *testing.T) {
	open, dir := diskOpener(t)
	started := time.Date(2025, 7, 10, 8, 0, 0, 0, time.UTC)

	var key string
	withDB(t, dir, func(db *storage.DB) {
		e := model.NewTimeEntry("Acme", "P1", "T1", "work", started)
		e.MarkRunning(started)
		require.NoError(t, storage.NewEntryRepo(db).Create(e))
		key = e.Key
	})

	clk := clock.NewMock(started.Add(30 * time.Minute))
	s := NewScheduler(open, time.Minute, ReconcileTask(clk))
	_, err := s.Tick(context.Background())
	require.NoError(t, err)

	withDB(t, dir, func(db *storage.DB) {
		ptr, err := storage.NewTimerRepo(db).Get()
		require.NoError(t, err)
		require.NotNil(t, ptr)
		assert.Equal(t, key, ptr.EntryKey)
		assert.True(t, ptr.StartedAt.Equal(started))
	})
}

func TestPushTask(t *testing.T) {
	t.Run("pushes_unsynced_entries", func(t *testing.T) {
		open, dir := diskOpener(t)
		withDB(t, dir, func(db *storage.DB) {
			e := model.NewTimeEntry("Acme", "P1", "T1", "work", time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC))
			require.NoError(t, storage.NewEntryRepo(db).Create(e))
		})

		var posts int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&posts, 1)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		newClient := func() (*backup.Client, error) {
			return backup.NewClient(srv.URL, "tok", time.Second, 0), nil
		}
		s := NewScheduler(open, time.Minute, PushTask(newClient, "E123", 0))
		_, err := s.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&posts))

		withDB(t, dir, func(db *storage.DB) {
			unsynced, err := storage.NewEntryRepo(db).ListUnsynced(0)
			require.NoError(t, err)
			assert.Empty(t, unsynced)
		})
	})

	t.Run("missing_token_skips_quietly", func(t *testing.T) {
		open, _ := diskOpener(t)
		newClient := func() (*backup.Client, error) { return nil, tserrors.ErrNotLoggedIn }
		s := NewScheduler(open, time.Minute, PushTask(newClient, "E123", 0))

		_, err := s.Tick(context.Background())
		assert.NoError(t, err)
	})

	t.Run("client_error_fails_task", func(t *testing.T) {
		open, _ := diskOpener(t)
		newClient := func() (*backup.Client, error) { return nil, errors.New("keyring locked") }
		s := NewScheduler(open, time.Minute, PushTask(newClient, "E123", 0))

		_, err := s.Tick(context.Background())
		assert.ErrorContains(t, err, "push: keyring locked")
	})
}

func TestObserver(t *testing.T) {
	open, _ := diskOpener(t)
	s := NewScheduler(open, time.Minute)

	var seen []TickStatus
	var last Stats
	s.SetObserver(func(status TickStatus, stats Stats) {
		seen = append(seen, status)
		last = stats
	})

	_, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []TickStatus{TickRan}, seen)
	assert.Equal(t, 1, last.Ticks)
	assert.False(t, last.LastTick.IsZero())
}
