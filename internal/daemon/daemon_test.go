package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/timesheet/internal/scheduler"
	"github.com/manav03panchal/timesheet/internal/storage"
)

// =============================================================================
// PIDFile Tests
// =============================================================================

func TestPIDFile(t *testing.T) {
	t.Run("write_read_remove", func(t *testing.T) {
		p := NewPIDFile(t.TempDir())
		require.NoError(t, p.Claim())

		pid, err := p.Read()
		require.NoError(t, err)
		assert.Equal(t, os.Getpid(), pid)
		assert.True(t, p.IsRunning())
		assert.Equal(t, os.Getpid(), p.RunningPID())

		require.NoError(t, p.Remove())
		_, err = p.Read()
		assert.ErrorIs(t, err, ErrNotRunning)
		assert.NoError(t, p.Remove())
	})

	t.Run("creates_directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "state")
		p := NewPIDFile(dir)
		require.NoError(t, p.WritePID(12345))
		assert.FileExists(t, filepath.Join(dir, PIDFileName))
	})

	t.Run("garbage_content", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, PIDFileName), []byte("abc"), 0o644))
		p := NewPIDFile(dir)
		_, err := p.Read()
		assert.Error(t, err)
		assert.False(t, p.IsRunning())
	})

	t.Run("dead_process", func(t *testing.T) {
		p := NewPIDFile(t.TempDir())
		require.NoError(t, p.WritePID(-1))
		assert.Equal(t, 0, p.RunningPID())
	})
}

func TestIsProcessRunning(t *testing.T) {
	assert.True(t, IsProcessRunning(os.Getpid()))
	assert.False(t, IsProcessRunning(0))
	assert.False(t, IsProcessRunning(-5))
}

// =============================================================================
// Daemon Tests
// =============================================================================

func TestStatusNotRunning(t *testing.T) {
	d := New(Options{Dir: t.TempDir()})
	status := d.Status()
	assert.False(t, status.Running)
	assert.Zero(t, status.PID)
	assert.ErrorIs(t, d.Stop(), ErrNotRunning)
}

func TestRunWritesAndRemovesState(t *testing.T) {
	dir := t.TempDir()
	dbDir := t.TempDir()
	d := New(Options{Dir: dir})

	sched := scheduler.NewScheduler(func() (*storage.DB, error) {
		return storage.Open(storage.Options{Path: dbDir})
	}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, sched) }()

	require.Eventually(t, func() bool {
		state, err := d.ReadState()
		return err == nil && state.Stats.Ticks == 1
	}, 5*time.Second, 20*time.Millisecond)

	status := d.Status()
	assert.True(t, status.Running)
	assert.Equal(t, os.Getpid(), status.PID)
	require.NotNil(t, status.State)
	assert.Equal(t, "@every 1h0m0s", status.State.Spec)
	assert.False(t, status.State.LastTick.IsZero())

	assert.ErrorIs(t, d.Run(context.Background(), sched), ErrAlreadyRunning)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}

	assert.NoFileExists(t, filepath.Join(dir, PIDFileName))
	assert.NoFileExists(t, filepath.Join(dir, StateFileName))
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{48 * time.Hour, "2d"},
		{50 * time.Hour, "2d 2h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.d))
	}
}

func TestLastLogError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	require.NoError(t, os.WriteFile(path, []byte("starting\nfailed to open store: busy\nbye\n"), 0o644))
	assert.Equal(t, "failed to open store: busy", lastLogError(path))
	assert.Equal(t, "", lastLogError(""))
	assert.Equal(t, "", lastLogError(filepath.Join(t.TempDir(), "missing.log")))
}
