// Package model defines the records persisted by timesheet.
package model

import "fmt"

// Model is the interface that all database models must implement.
type Model interface {
	// SetKey sets the database key for this model.
	SetKey(key string)
	// GetKey returns the database key for this model.
	GetKey() string
}

// Syncable is a model that carries a backup sync flag.
type Syncable interface {
	Model
	IsSynced() bool
	SetSynced(synced bool)
}

// Key prefixes and singleton keys.
const (
	PrefixEntry     = "entry"
	PrefixBilling   = "billing"
	PrefixSetting   = "setting"
	PrefixExpiring  = "expiring"
	KeyRunningTimer = "runningtimer"
	KeyDayMarker    = "daymarker"
)

// GenerateKey joins a prefix and an id into a database key.
func GenerateKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// KeyID returns the id part of a prefixed key.
func KeyID(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[i+1:]
		}
	}
	return key
}
