package errors

import (
	"errors"
	"syscall"
)

// Category groups errors by who can act on them.
type Category int

const (
	CategoryUnknown Category = iota
	// CategoryUser is input or state the user can fix.
	CategoryUser
	// CategorySystem is a local resource failure such as a full disk.
	CategorySystem
	// CategoryRecoverable clears up on its own; the next sync tick retries.
	CategoryRecoverable
)

var categoryNames = map[Category]string{
	CategoryUser:        "user",
	CategorySystem:      "system",
	CategoryRecoverable: "recoverable",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// sentinelCategories assigns every package sentinel a category.
var sentinelCategories = map[error]Category{
	ErrEntryNotFound:      CategoryUser,
	ErrAmbiguousEntry:     CategoryUser,
	ErrNoRunningTimer:     CategoryUser,
	ErrBillingNotFound:    CategoryUser,
	ErrClientRequired:     CategoryUser,
	ErrInvalidDuration:    CategoryUser,
	ErrInvalidDate:        CategoryUser,
	ErrInvalidWeekday:     CategoryUser,
	ErrInvalidTimezone:    CategoryUser,
	ErrInvalidBillingType: CategoryUser,
	ErrUnknownSetting:     CategoryUser,
	ErrSyncNotConfigured:  CategoryUser,
	ErrNotLoggedIn:        CategoryUser,
	ErrUnauthorized:       CategoryUser,

	ErrDiskFull:         CategorySystem,
	ErrPermissionDenied: CategorySystem,

	ErrNetworkUnavailable: CategoryRecoverable,
	ErrTimeout:            CategoryRecoverable,
	ErrDatabaseBusy:       CategoryRecoverable,
}

// errnoCategories classifies raw syscall failures that reach the top.
var errnoCategories = map[syscall.Errno]Category{
	syscall.ENOSPC: CategorySystem,
	syscall.EACCES: CategorySystem,
	syscall.EPERM:  CategorySystem,
	syscall.ENOENT: CategorySystem,
	syscall.EIO:    CategorySystem,
	syscall.EROFS:  CategorySystem,

	syscall.EAGAIN:       CategoryRecoverable,
	syscall.EINTR:        CategoryRecoverable,
	syscall.ETIMEDOUT:    CategoryRecoverable,
	syscall.ECONNREFUSED: CategoryRecoverable,
	syscall.ECONNRESET:   CategoryRecoverable,
}

// Classify determines the category of an error. Typed errors win over
// sentinels, and a RecoverableError wins over whatever it wraps.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryUnknown
	case IsRecoverableError(err):
		return CategoryRecoverable
	case IsUserError(err):
		return CategoryUser
	case IsSystemError(err):
		return CategorySystem
	}

	for sentinel, c := range sentinelCategories {
		if errors.Is(err, sentinel) {
			return c
		}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if c, ok := errnoCategories[errno]; ok {
			return c
		}
	}
	return CategoryUnknown
}
