package model

import (
	"time"
)

// TimeEntry is one logged task against a client project.
type TimeEntry struct {
	Key             string     `json:"id"`
	Client          string     `json:"client"`
	ProjectCode     string     `json:"projectCode"`
	TaskCode        string     `json:"taskCode"`
	Description     string     `json:"description"`
	Comments        string     `json:"comments,omitempty"`
	WorkLocation    string     `json:"workLocation,omitempty"`
	EntryDate       time.Time  `json:"entryDate"`
	DurationSeconds int64      `json:"duration"`
	Running         bool       `json:"isRunning"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	Synced          bool       `json:"isSynced"`
}

// SetKey sets the database key for this entry.
func (e *TimeEntry) SetKey(key string) {
	e.Key = key
}

// GetKey returns the database key for this entry.
func (e *TimeEntry) GetKey() string {
	return e.Key
}

// IsSynced reports whether the entry has been pushed to the backup server.
func (e *TimeEntry) IsSynced() bool { return e.Synced }

// SetSynced sets the sync flag.
func (e *TimeEntry) SetSynced(synced bool) { e.Synced = synced }

// ID returns the key without its prefix.
func (e *TimeEntry) ID() string {
	return KeyID(e.Key)
}

// ShortID returns the last eight characters of the id, which are random
// for time-ordered uuids.
func (e *TimeEntry) ShortID() string {
	id := e.ID()
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

// EffectiveDuration returns the accumulated seconds plus the in-progress
// interval if the entry is running. Negative intervals count as zero.
func (e *TimeEntry) EffectiveDuration(now time.Time) int64 {
	total := e.DurationSeconds
	if total < 0 {
		total = 0
	}
	if e.Running && e.StartedAt != nil {
		total += ElapsedSeconds(*e.StartedAt, now)
	}
	return total
}

// MarkRunning sets the entry running from start.
func (e *TimeEntry) MarkRunning(start time.Time) {
	s := start.UTC()
	e.Running = true
	e.StartedAt = &s
}

// MarkStopped folds elapsed into the accumulated duration and stops the entry.
func (e *TimeEntry) MarkStopped(elapsed int64) {
	if elapsed > 0 {
		e.DurationSeconds += elapsed
	}
	e.Running = false
	e.StartedAt = nil
}

// ElapsedSeconds returns whole seconds from start to now, floored, never negative.
func ElapsedSeconds(start, now time.Time) int64 {
	d := now.Sub(start)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// NewTimeEntry creates an entry for the given date.
func NewTimeEntry(client, projectCode, taskCode, description string, entryDate time.Time) *TimeEntry {
	return &TimeEntry{
		Client:      client,
		ProjectCode: projectCode,
		TaskCode:    taskCode,
		Description: description,
		EntryDate:   entryDate,
	}
}
