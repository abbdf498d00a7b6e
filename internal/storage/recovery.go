package storage

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/logging"
)

// maxReportedProblems caps the problem list of an integrity report.
const maxReportedProblems = 20

// IntegrityReport is the result of a full scan of the store.
type IntegrityReport struct {
	Healthy   bool           `json:"healthy"`
	CheckedAt time.Time      `json:"checked_at"`
	Keys      int            `json:"keys"`
	ByPrefix  map[string]int `json:"by_prefix"`
	Unsynced  int            `json:"unsynced"`
	Problems  []string       `json:"problems,omitempty"`
	Errors    int            `json:"errors"`
}

func (r *IntegrityReport) problem(format string, args ...any) {
	r.Errors++
	if len(r.Problems) < maxReportedProblems {
		r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
	}
}

// syncFlag is the part of every synced record needed for the scan.
type syncFlag struct {
	Synced *bool `json:"isSynced"`
}

// CheckIntegrity reads every record and reports values that cannot be read
// or decoded, with record counts per key prefix.
func CheckIntegrity(db *DB, now time.Time) *IntegrityReport {
	report := &IntegrityReport{CheckedAt: now, ByPrefix: make(map[string]int)}
	if db == nil || db.db == nil {
		report.problem("database not initialized")
		return report
	}

	err := db.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil))
			report.Keys++
			prefix, _, _ := strings.Cut(key, ":")
			report.ByPrefix[prefix]++

			err := item.Value(func(val []byte) error {
				var flag syncFlag
				if err := json.Unmarshal(val, &flag); err != nil {
					return err
				}
				if flag.Synced != nil && !*flag.Synced {
					report.Unsynced++
				}
				return nil
			})
			if err != nil {
				report.problem("%s: %v", key, err)
			}
		}
		return nil
	})
	if err != nil {
		report.problem("iteration: %v", err)
	}

	report.Healthy = report.Errors == 0
	return report
}

// Backup writes a full badger backup of the store into dir and returns its
// path. The file can be loaded back with Load.
func Backup(db *DB, dir string, now time.Time) (string, error) {
	if err := EnsureDirectory(dir); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	if err := CheckDiskSpace(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("timesheet-%s.bak", now.Format("20060102-150405")))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := db.db.Backup(f, 0); err != nil {
		f.Close()
		os.Remove(path)
		if isDiskFullError(err) {
			return "", errors.ErrDiskFull
		}
		return "", fmt.Errorf("backup: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	logging.Info("database backup created", logging.KeyOperation, "backup", "path", path)
	return path, nil
}

// Load restores a file written by Backup into the store. Existing keys are
// overwritten by the backup's values.
func Load(db *DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := db.db.Load(f, 256); err != nil {
		return fmt.Errorf("load backup: %w", err)
	}
	logging.Info("database backup loaded", logging.KeyOperation, "load", "path", path)
	return nil
}

// Compact runs value log garbage collection until nothing is left to
// reclaim and returns the number of rewritten log files. In-memory stores
// have no value log.
func Compact(db *DB) (int, error) {
	n := 0
	if db.path == "" {
		return n, nil
	}
	for {
		err := db.db.RunValueLogGC(0.5)
		if stderrors.Is(err, badger.ErrNoRewrite) || stderrors.Is(err, badger.ErrRejected) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}
