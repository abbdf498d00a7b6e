package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manav03panchal/timesheet/internal/errors"
)

const (
	// MinFreeSpace is the minimum free space required for writes (10MB).
	MinFreeSpace = 10 * 1024 * 1024
	// MinFreeSpaceWarning is the low disk space warning threshold (50MB).
	MinFreeSpaceWarning = 50 * 1024 * 1024
)

// DiskSpaceInfo contains information about available disk space.
type DiskSpaceInfo struct {
	Path       string
	TotalBytes uint64
	FreeBytes  uint64
	UsedBytes  uint64
}

// CheckDiskSpace fails with ErrDiskFull when free space at path is below
// MinFreeSpace. When space cannot be measured it returns nil.
func CheckDiskSpace(path string) error {
	info, err := GetDiskSpace(path)
	if err != nil {
		return nil
	}
	if info.FreeBytes < MinFreeSpace {
		return errors.NewSystemError(
			fmt.Sprintf("insufficient disk space: %d MB free, need at least %d MB",
				info.FreeBytes/(1024*1024), MinFreeSpace/(1024*1024)),
			errors.ErrDiskFull,
		)
	}
	return nil
}

// LowDiskWarning returns a warning when free space at path is below
// MinFreeSpaceWarning, or "".
func LowDiskWarning(path string) string {
	info, err := GetDiskSpace(path)
	if err != nil {
		return ""
	}
	if info.FreeBytes < MinFreeSpaceWarning {
		return fmt.Sprintf("low disk space: %d MB free", info.FreeBytes/(1024*1024))
	}
	return ""
}

// wrapIOError maps a full disk to ErrDiskFull and wraps anything else
// with op.
func wrapIOError(op string, err error) error {
	if isDiskFullError(err) {
		return errors.NewSystemErrorWithOp(op, "disk full", errors.ErrDiskFull)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// WriteFileAtomic replaces path with data through a synced temp file in
// the same directory, so readers see the old or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := CheckDiskSpace(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".timesheet-*.tmp")
	if err != nil {
		return wrapIOError("create temp file", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return wrapIOError("write "+path, err)
	}
	if err := tmp.Sync(); err != nil {
		return wrapIOError("sync "+path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return wrapIOError("close temp file", err)
	}
	return os.Rename(tmp.Name(), path)
}

// EnsureDirectory creates a directory with owner-only permissions.
func EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return wrapIOError("create directory "+path, err)
	}
	return nil
}

// existingParent walks up from path to the first directory that exists.
func existingParent(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
