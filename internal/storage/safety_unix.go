//go:build !windows

package storage

import (
	"errors"
	"fmt"
	"syscall"
)

// GetDiskSpace reports the filesystem holding path, or its nearest
// existing parent.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	path = existingParent(path)

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", path, err)
	}
	bsize := uint64(stat.Bsize)
	info := &DiskSpaceInfo{
		Path:       path,
		TotalBytes: stat.Blocks * bsize,
		FreeBytes:  stat.Bavail * bsize,
	}
	info.UsedBytes = info.TotalBytes - info.FreeBytes
	return info, nil
}

func isDiskFullError(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}
