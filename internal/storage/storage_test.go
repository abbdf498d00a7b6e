package storage

import (
	"testing"
	"time"

	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// DB Tests
// =============================================================================

func TestOpenClose(t *testing.T) {
	t.Run("in_memory", func(t *testing.T) {
		db, err := Open(Options{InMemory: true})
		require.NoError(t, err)
		assert.NotNil(t, db)
		assert.NoError(t, db.Close())
	})

	t.Run("empty_path_uses_in_memory", func(t *testing.T) {
		db, err := Open(Options{Path: ""})
		require.NoError(t, err)
		assert.Equal(t, "", db.Path())
		db.Close()
	})

	t.Run("memory_literal", func(t *testing.T) {
		db, err := Open(Options{Path: ":memory:"})
		require.NoError(t, err)
		assert.Equal(t, "", db.Path())
		db.Close()
	})

	t.Run("on_disk", func(t *testing.T) {
		dir := t.TempDir()
		db, err := Open(Options{Path: dir})
		require.NoError(t, err)
		assert.Equal(t, dir, db.Path())
		assert.NotNil(t, db.Badger())
		require.NoError(t, db.Close())
	})

	t.Run("second_open_reports_busy", func(t *testing.T) {
		dir := t.TempDir()
		db, err := Open(Options{Path: dir})
		require.NoError(t, err)
		defer db.Close()

		_, err = Open(Options{Path: dir, BusyTimeout: 200 * time.Millisecond})
		assert.ErrorIs(t, err, ErrDatabaseBusy)
	})
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	assert.Contains(t, path, "timesheet")
	assert.Contains(t, path, "db")
}

// =============================================================================
// Transaction Tests
// =============================================================================

func TestUpdateIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	e := &model.TimeEntry{Key: "entry:one", Client: "Acme"}
	err := db.Update(func(tx *Tx) error {
		if err := tx.Save(e); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = repo.Get("entry:one")
	assert.True(t, IsErrKeyNotFound(err))
}

func TestGetBytesAndExists(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.SetBytes("raw", []byte("hello")))
	data, err := db.GetBytes("raw")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	ok, err := db.Exists("raw")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.Exists("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = db.GetBytes("missing")
	assert.True(t, IsErrKeyNotFound(err))
}

// =============================================================================
// Collection Tests
// =============================================================================

func TestCollectionSyncFlags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	a := &model.TimeEntry{Client: "Acme", EntryDate: day(2025, 7, 10)}
	b := &model.TimeEntry{Client: "Beta", EntryDate: day(2025, 7, 10)}
	require.NoError(t, repo.Create(a))
	require.NoError(t, repo.Create(b))

	t.Run("new_records_unsynced", func(t *testing.T) {
		pending, err := repo.ListUnsynced(0)
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})

	t.Run("limit", func(t *testing.T) {
		pending, err := repo.ListUnsynced(1)
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})

	t.Run("mark_synced", func(t *testing.T) {
		require.NoError(t, repo.MarkSynced([]string{a.Key, "entry:gone"}))
		pending, err := repo.ListUnsynced(0)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, b.Key, pending[0].Key)
	})

	t.Run("update_clears_flag", func(t *testing.T) {
		got, err := repo.Get(a.Key)
		require.NoError(t, err)
		assert.True(t, got.Synced)

		got.Description = "edited"
		require.NoError(t, repo.Update(got))

		got, err = repo.Get(a.Key)
		require.NoError(t, err)
		assert.False(t, got.Synced)
	})

	t.Run("update_missing_fails", func(t *testing.T) {
		err := repo.Update(&model.TimeEntry{Key: "entry:missing"})
		assert.True(t, IsErrKeyNotFound(err))
	})
}

func TestCollectionBulkAdd(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	existing := &model.TimeEntry{Key: "entry:a", Description: "local"}
	require.NoError(t, repo.Add(existing))

	added, err := repo.BulkAdd([]*model.TimeEntry{
		{Key: "entry:a", Description: "remote", Synced: true},
		{Key: "entry:b", Description: "remote", Synced: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	a, err := repo.Get("entry:a")
	require.NoError(t, err)
	assert.Equal(t, "local", a.Description)

	b, err := repo.Get("entry:b")
	require.NoError(t, err)
	assert.True(t, b.Synced)
}

func TestCollectionClear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBillingRepo(db)
	require.NoError(t, repo.Create(&model.BillingManager{Client: "Acme"}))
	require.NoError(t, repo.Create(&model.BillingManager{Client: "Beta"}))

	require.NoError(t, repo.Clear())
	all, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

// =============================================================================
// EntryRepo Tests
// =============================================================================

func TestEntryRepoCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	e := model.NewTimeEntry("Acme", "P-1", "T-1", "work", day(2025, 7, 10))
	require.NoError(t, repo.Create(e))
	assert.Contains(t, e.Key, "entry:")
	assert.False(t, e.CreatedAt.IsZero())

	got, err := repo.Get(e.Key)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Client)
	assert.Equal(t, e.Key, got.Key)
}

func TestEntryRepoListByDate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	detroit, err := time.LoadLocation("America/Detroit")
	require.NoError(t, err)

	// Local midnight in Detroit is 04:00 UTC; projection keeps the local date.
	require.NoError(t, repo.Create(&model.TimeEntry{Client: "A", EntryDate: time.Date(2025, 7, 10, 0, 0, 0, 0, detroit)}))
	require.NoError(t, repo.Create(&model.TimeEntry{Client: "B", EntryDate: time.Date(2025, 7, 11, 0, 0, 0, 0, detroit)}))

	got, err := repo.ListByDate(time.Date(2025, 7, 10, 0, 0, 0, 0, detroit))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Client)
}

func TestEntryRepoListByRange(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	for i, d := range []int{12, 8, 10, 9} {
		require.NoError(t, repo.Create(&model.TimeEntry{
			Client:    string(rune('A' + i)),
			EntryDate: day(2025, 7, d),
		}))
	}

	got, err := repo.ListByRange(day(2025, 7, 9), day(2025, 7, 12))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 9, got[0].EntryDate.Day())
	assert.Equal(t, 10, got[1].EntryDate.Day())
	assert.Equal(t, 12, got[2].EntryDate.Day())

	latest, err := repo.LatestDateBefore(day(2025, 7, 12))
	require.NoError(t, err)
	assert.Equal(t, 10, latest.Day())

	none, err := repo.LatestDateBefore(day(2025, 7, 8))
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestEntryRepoListRunning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	running := &model.TimeEntry{Client: "A"}
	running.MarkRunning(time.Now())
	require.NoError(t, repo.Create(running))
	require.NoError(t, repo.Create(&model.TimeEntry{Client: "B"}))

	got, err := repo.ListRunning()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, running.Key, got[0].Key)
}

func TestEntryRepoResolve(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	a := &model.TimeEntry{Key: "entry:aaaa1111-0000-7000-8000-00000000beef"}
	b := &model.TimeEntry{Key: "entry:aaaa2222-0000-7000-8000-00000000cafe"}
	require.NoError(t, repo.Add(a))
	require.NoError(t, repo.Add(b))

	t.Run("full_key", func(t *testing.T) {
		got, err := repo.Resolve(a.Key)
		require.NoError(t, err)
		assert.Equal(t, a.Key, got.Key)
	})

	t.Run("full_uuid", func(t *testing.T) {
		got, err := repo.Resolve(b.ID())
		require.NoError(t, err)
		assert.Equal(t, b.Key, got.Key)
	})

	t.Run("uuid_prefix", func(t *testing.T) {
		got, err := repo.Resolve("aaaa11")
		require.NoError(t, err)
		assert.Equal(t, a.Key, got.Key)
	})

	t.Run("short_id", func(t *testing.T) {
		got, err := repo.Resolve("0000cafe")
		require.NoError(t, err)
		assert.Equal(t, b.Key, got.Key)
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, err := repo.Resolve("aaaa")
		var amb *AmbiguousMatchError
		require.ErrorAs(t, err, &amb)
		assert.Equal(t, 2, amb.Matches)
	})

	t.Run("too_short", func(t *testing.T) {
		_, err := repo.Resolve("aaa")
		assert.True(t, IsErrKeyNotFound(err))
	})

	t.Run("no_match", func(t *testing.T) {
		_, err := repo.Resolve("ffff")
		assert.True(t, IsErrKeyNotFound(err))
	})
}

func TestSortNewestFirstAndTotal(t *testing.T) {
	base := time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)
	entries := []*model.TimeEntry{
		{Key: "entry:1", CreatedAt: base, DurationSeconds: 60},
		{Key: "entry:2", CreatedAt: base.Add(time.Hour), DurationSeconds: 120},
	}
	SortNewestFirst(entries)
	assert.Equal(t, "entry:2", entries[0].Key)
	assert.Equal(t, int64(180), TotalSeconds(entries, base))
}

// =============================================================================
// BillingRepo Tests
// =============================================================================

func TestBillingRepoSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBillingRepo(db)

	require.NoError(t, repo.Create(&model.BillingManager{Client: "Zeta", ProjectCode: "Z-1", BillingType: model.BillingTypeBillable}))
	require.NoError(t, repo.Create(&model.BillingManager{Client: "acme", ProjectCode: "A-1", BillingType: model.BillingTypeBillable}))
	require.NoError(t, repo.Create(&model.BillingManager{Client: "Beta", ProjectCode: "B-1", Archived: true}))

	t.Run("all_active_sorted_by_client", func(t *testing.T) {
		got, err := repo.Search("", false)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "acme", got[0].Client)
		assert.Equal(t, "Zeta", got[1].Client)
	})

	t.Run("include_archived", func(t *testing.T) {
		got, err := repo.Search("", true)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("term_matches_codes", func(t *testing.T) {
		got, err := repo.Search("z-1", false)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Zeta", got[0].Client)
	})
}

// =============================================================================
// SettingRepo Tests
// =============================================================================

func TestSettingRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingRepo(db)

	t.Run("missing_uses_defaults", func(t *testing.T) {
		_, ok, err := repo.GetValue(model.SettingTimezone)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, repo.Bool(model.SettingCopyTimesheet, true))
		assert.Equal(t, 40.0, repo.Float(model.SettingBillableGoal, 40))
		assert.Equal(t, "UTC", repo.String(model.SettingTimezone, "UTC"))
	})

	t.Run("set_and_get", func(t *testing.T) {
		require.NoError(t, repo.SetValue(model.SettingTimezone, "America/Detroit"))
		require.NoError(t, repo.SetValue(model.SettingCopyTimesheet, "false"))
		require.NoError(t, repo.SetValue(model.SettingBillableGoal, "32.5"))

		v, ok, err := repo.GetValue(model.SettingTimezone)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "America/Detroit", v)
		assert.False(t, repo.Bool(model.SettingCopyTimesheet, true))
		assert.Equal(t, 32.5, repo.Float(model.SettingBillableGoal, 40))
	})

	t.Run("overwrite_keeps_one_record", func(t *testing.T) {
		require.NoError(t, repo.SetValue(model.SettingTimezone, "UTC"))
		all, err := repo.List()
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("replace", func(t *testing.T) {
		require.NoError(t, repo.Replace([]*model.Setting{
			{Type: model.SettingDecimalMark, Value: ",", Synced: true},
		}))
		all, err := repo.List()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, model.SettingDecimalMark, all[0].Type)
		assert.True(t, all[0].Synced)
	})
}

// =============================================================================
// TimerRepo / DayMarkerRepo Tests
// =============================================================================

func TestTimerRepoCommit(t *testing.T) {
	db := setupTestDB(t)
	timers := NewTimerRepo(db)
	entries := NewEntryRepo(db)

	rt, err := timers.Get()
	require.NoError(t, err)
	assert.Nil(t, rt)

	start := time.Date(2025, 7, 10, 16, 0, 0, 0, time.UTC)
	e := &model.TimeEntry{Key: "entry:one"}
	e.MarkRunning(start)
	require.NoError(t, timers.Commit(model.NewRunningTimer(e.Key, start), e))

	rt, err = timers.Get()
	require.NoError(t, err)
	require.NotNil(t, rt)
	assert.Equal(t, "entry:one", rt.EntryKey)
	assert.True(t, rt.StartedAt.Equal(start))

	got, err := entries.Get("entry:one")
	require.NoError(t, err)
	assert.True(t, got.Running)

	require.NoError(t, timers.Clear())
	rt, err = timers.Get()
	require.NoError(t, err)
	assert.Nil(t, rt)
}

func TestDayMarkerRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDayMarkerRepo(db)

	m, err := repo.Get()
	require.NoError(t, err)
	assert.Nil(t, m)

	at := time.Date(2025, 7, 10, 4, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(model.NewDayMarker(at)))

	m, err = repo.Get()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.LastPromptAt.Equal(at))
}

// =============================================================================
// ExpiringRepo Tests
// =============================================================================

func TestExpiringRepo(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	repo := NewExpiringRepo(db, func() time.Time { return now })

	require.NoError(t, repo.SetWithExpiration("copied", "2025-07-10", time.Hour))

	v, ok, err := repo.GetWithExpiration("copied")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2025-07-10", v)

	now = now.Add(time.Hour)
	_, ok, err = repo.GetWithExpiration("copied")
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := db.Exists(model.GenerateKey(model.PrefixExpiring, "copied"))
	require.NoError(t, err)
	assert.False(t, exists)
}
