package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/timesheet/internal/model"
)

// =============================================================================
// Integrity Tests
// =============================================================================

func TestCheckIntegrity(t *testing.T) {
	checked := time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)

	t.Run("healthy_store", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewEntryRepo(db)
		require.NoError(t, repo.Create(model.NewTimeEntry("Acme", "P-1", "T-1", "one", day(2025, 7, 10))))
		require.NoError(t, repo.Create(model.NewTimeEntry("Acme", "P-1", "T-1", "two", day(2025, 7, 10))))

		report := CheckIntegrity(db, checked)
		assert.True(t, report.Healthy)
		assert.Equal(t, checked, report.CheckedAt)
		assert.Equal(t, 2, report.Keys)
		assert.Equal(t, 2, report.ByPrefix["entry"])
		assert.Equal(t, 2, report.Unsynced)
		assert.Empty(t, report.Problems)
	})

	t.Run("undecodable_value", func(t *testing.T) {
		db := setupTestDB(t)
		require.NoError(t, db.SetBytes("entry:broken", []byte("{not json")))

		report := CheckIntegrity(db, checked)
		assert.False(t, report.Healthy)
		assert.Equal(t, 1, report.Errors)
		require.Len(t, report.Problems, 1)
		assert.Contains(t, report.Problems[0], "entry:broken")
	})

	t.Run("problems_capped", func(t *testing.T) {
		db := setupTestDB(t)
		for i := 0; i < maxReportedProblems+5; i++ {
			require.NoError(t, db.SetBytes("entry:bad"+string(rune('a'+i)), []byte("x")))
		}

		report := CheckIntegrity(db, checked)
		assert.Equal(t, maxReportedProblems+5, report.Errors)
		assert.Len(t, report.Problems, maxReportedProblems)
	})

	t.Run("nil_db", func(t *testing.T) {
		report := CheckIntegrity(nil, checked)
		assert.False(t, report.Healthy)
	})
}

// =============================================================================
// Backup Tests
// =============================================================================

func TestBackupAndLoad(t *testing.T) {
	src := setupTestDB(t)
	e := model.NewTimeEntry("Acme", "P-1", "T-1", "backed up", day(2025, 7, 10))
	require.NoError(t, NewEntryRepo(src).Create(e))

	dir := filepath.Join(t.TempDir(), "backups")
	path, err := Backup(src, dir, time.Date(2025, 7, 10, 17, 30, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "timesheet-20250710-173005.bak"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	dst := setupTestDB(t)
	require.NoError(t, Load(dst, path))

	got, err := NewEntryRepo(dst).Get(e.Key)
	require.NoError(t, err)
	assert.Equal(t, "backed up", got.Description)
}

func TestBackupDoesNotOverwrite(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	at := time.Date(2025, 7, 10, 17, 30, 5, 0, time.UTC)

	_, err := Backup(db, dir, at)
	require.NoError(t, err)
	_, err = Backup(db, dir, at)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	db := setupTestDB(t)
	err := Load(db, filepath.Join(t.TempDir(), "missing.bak"))
	assert.Error(t, err)
}

// =============================================================================
// Compact Tests
// =============================================================================

func TestCompact(t *testing.T) {
	t.Run("in_memory", func(t *testing.T) {
		n, err := Compact(setupTestDB(t))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("on_disk", func(t *testing.T) {
		db, err := Open(Options{Path: filepath.Join(t.TempDir(), "db")})
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, NewEntryRepo(db).Create(model.NewTimeEntry("Acme", "", "", "x", day(2025, 7, 10))))
		n, err := Compact(db)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
	})
}
