// Package storage provides the badger-backed record store for timesheet.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/manav03panchal/timesheet/internal/errors"
)

const (
	// AppName is the application name used for data directories.
	AppName = "timesheet"
)

// ErrDatabaseBusy is returned when another process holds the database
// directory lock for longer than the open retry window.
var ErrDatabaseBusy = errors.ErrDatabaseBusy

// DB wraps a Badger database connection.
type DB struct {
	db   *badger.DB
	path string
}

// Options configures the database connection.
type Options struct {
	// Path is the database directory path. Empty string uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
	// BusyTimeout is how long Open keeps retrying while the directory lock
	// is held elsewhere. Zero means a single attempt.
	BusyTimeout time.Duration
}

// DefaultPath returns the default database path under the XDG data home.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "db")
}

// Open opens or creates a database at the given path.
func Open(opts Options) (*DB, error) {
	var badgerOpts badger.Options
	path := ""

	if opts.InMemory || opts.Path == "" || opts.Path == ":memory:" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(opts.Path)
		path = opts.Path
	}

	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	deadline := time.Now().Add(opts.BusyTimeout)
	for {
		db, err := badger.Open(badgerOpts)
		if err == nil {
			return &DB{db: db, path: path}, nil
		}
		if !isLockError(err) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseBusy, path)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// isLockError reports whether err is badger's directory lock failure.
func isLockError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Cannot acquire directory lock") ||
		strings.Contains(msg, "resource temporarily unavailable")
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database directory, or "" for an in-memory database.
func (d *DB) Path() string {
	return d.path
}

// Badger returns the underlying Badger database for advanced operations.
func (d *DB) Badger() *badger.DB {
	return d.db
}
