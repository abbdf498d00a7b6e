//go:build windows

package storage

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// GetDiskSpace reports the volume holding path, or its nearest existing
// parent.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	path = existingParent(path)

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	var free, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(p, &free, &total, &totalFree); err != nil {
		return nil, fmt.Errorf("disk space of %s: %w", path, err)
	}
	return &DiskSpaceInfo{
		Path:       path,
		TotalBytes: total,
		FreeBytes:  free,
		UsedBytes:  total - free,
	}, nil
}

func isDiskFullError(err error) bool {
	return errors.Is(err, windows.ERROR_DISK_FULL) || errors.Is(err, windows.ERROR_HANDLE_DISK_FULL)
}
