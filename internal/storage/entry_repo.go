package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manav03panchal/timesheet/internal/model"
)

// MinRefLength is the shortest entry reference accepted by Resolve.
const MinRefLength = 4

// AmbiguousMatchError is returned when multiple entries match a short reference.
type AmbiguousMatchError struct {
	Ref     string
	Matches int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d entries match %q", e.Matches, e.Ref)
}

// EntryRepo provides operations for TimeEntry records.
type EntryRepo struct {
	*Collection[*model.TimeEntry]
	db *DB
}

// NewEntryRepo creates a new entry repository.
func NewEntryRepo(db *DB) *EntryRepo {
	return &EntryRepo{
		Collection: NewCollection(db, model.PrefixEntry, func() *model.TimeEntry {
			return &model.TimeEntry{}
		}),
		db: db,
	}
}

// Create creates a new entry with a generated key.
func (r *EntryRepo) Create(entry *model.TimeEntry) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	entry.Key = model.GenerateKey(model.PrefixEntry, id.String())
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return r.Add(entry)
}

// dateKey projects an entry date to its calendar day.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ListByDate retrieves entries whose entry date falls on date's calendar day.
func (r *EntryRepo) ListByDate(date time.Time) ([]*model.TimeEntry, error) {
	day := dateKey(date)
	return r.Filter(func(e *model.TimeEntry) bool {
		return dateKey(e.EntryDate) == day
	})
}

// ListByRange retrieves entries dated between from and to inclusive,
// oldest entry date first.
func (r *EntryRepo) ListByRange(from, to time.Time) ([]*model.TimeEntry, error) {
	lo, hi := dateKey(from), dateKey(to)
	entries, err := r.Filter(func(e *model.TimeEntry) bool {
		d := dateKey(e.EntryDate)
		return d >= lo && d <= hi
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := dateKey(entries[i].EntryDate), dateKey(entries[j].EntryDate)
		if di != dj {
			return di < dj
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// ListRunning retrieves entries flagged as running.
func (r *EntryRepo) ListRunning() ([]*model.TimeEntry, error) {
	return r.Filter(func(e *model.TimeEntry) bool {
		return e.Running
	})
}

// LatestDateBefore returns the most recent entry date strictly before date,
// or the zero time if there is none.
func (r *EntryRepo) LatestDateBefore(date time.Time) (time.Time, error) {
	limit := dateKey(date)
	var latest time.Time
	entries, err := r.Filter(func(e *model.TimeEntry) bool {
		return dateKey(e.EntryDate) < limit
	})
	if err != nil {
		return time.Time{}, err
	}
	for _, e := range entries {
		if latest.IsZero() || dateKey(e.EntryDate) > dateKey(latest) {
			latest = e.EntryDate
		}
	}
	return latest, nil
}

// Resolve finds an entry by full key, full uuid, or a unique reference of at
// least MinRefLength characters matching the start of the uuid or its short id.
func (r *EntryRepo) Resolve(ref string) (*model.TimeEntry, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if strings.HasPrefix(ref, r.Prefix()) {
		return r.Get(ref)
	}
	if len(ref) < MinRefLength {
		return nil, ErrKeyNotFound
	}
	if e, err := r.Get(model.GenerateKey(model.PrefixEntry, ref)); err == nil {
		return e, nil
	} else if !IsErrKeyNotFound(err) {
		return nil, err
	}

	matches, err := r.Filter(func(e *model.TimeEntry) bool {
		return strings.HasPrefix(e.ID(), ref) || strings.HasPrefix(e.ShortID(), ref)
	})
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrKeyNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, &AmbiguousMatchError{Ref: ref, Matches: len(matches)}
	}
}

// SortNewestFirst orders entries by creation time, newest first.
func SortNewestFirst(entries []*model.TimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// TotalSeconds sums the effective duration of entries at now.
func TotalSeconds(entries []*model.TimeEntry, now time.Time) int64 {
	var total int64
	for _, e := range entries {
		total += e.EffectiveDuration(now)
	}
	return total
}
