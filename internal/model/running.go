package model

import "time"

// RunningTimer is the durable pointer to the entry whose timer is running.
// It holds the authoritative start instant of the running interval.
type RunningTimer struct {
	Key       string    `json:"key"`
	EntryKey  string    `json:"entryId,omitempty"`
	StartedAt time.Time `json:"startedAt,omitempty"`
}

// SetKey sets the database key for this record.
func (r *RunningTimer) SetKey(key string) {
	r.Key = key
}

// GetKey returns the database key for this record.
func (r *RunningTimer) GetKey() string {
	return r.Key
}

// IsRunning returns true if the pointer is set.
func (r *RunningTimer) IsRunning() bool {
	return r.EntryKey != ""
}

// PointsAt reports whether the pointer refers to entryKey.
func (r *RunningTimer) PointsAt(entryKey string) bool {
	return r != nil && r.EntryKey != "" && r.EntryKey == entryKey
}

// NewRunningTimer creates a pointer to entryKey starting at start.
func NewRunningTimer(entryKey string, start time.Time) *RunningTimer {
	return &RunningTimer{
		Key:       KeyRunningTimer,
		EntryKey:  entryKey,
		StartedAt: start.UTC(),
	}
}

// DayMarker records the last instant the new-day prompt was acknowledged.
type DayMarker struct {
	Key          string    `json:"key"`
	LastPromptAt time.Time `json:"lastPromptAt"`
}

// SetKey sets the database key.
func (d *DayMarker) SetKey(key string) { d.Key = key }

// GetKey returns the database key.
func (d *DayMarker) GetKey() string { return d.Key }

// NewDayMarker creates a marker stored in UTC.
func NewDayMarker(at time.Time) *DayMarker {
	return &DayMarker{Key: KeyDayMarker, LastPromptAt: at.UTC()}
}

// ExpiringItem is a value that stops existing after Expiry.
type ExpiringItem struct {
	Key    string    `json:"key"`
	Value  string    `json:"value"`
	Expiry time.Time `json:"expiry"`
}

// SetKey sets the database key.
func (e *ExpiringItem) SetKey(key string) { e.Key = key }

// GetKey returns the database key.
func (e *ExpiringItem) GetKey() string { return e.Key }

// Expired reports whether the item has expired at now.
func (e *ExpiringItem) Expired(now time.Time) bool {
	return !now.Before(e.Expiry)
}
