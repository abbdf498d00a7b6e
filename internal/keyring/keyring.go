// Package keyring keeps the sync bearer token in the OS keyring, one entry
// per employee.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	tserrors "github.com/manav03panchal/timesheet/internal/errors"
)

// Service is the keyring service name.
const Service = "timesheet"

// ErrUnavailable is returned when the OS keyring cannot be used.
var ErrUnavailable = errors.New("OS keyring is not available")

// Token returns the stored token for employee. It returns
// errors.ErrNotLoggedIn when none is stored.
func Token(employee string) (string, error) {
	token, err := keyring.Get(Service, employee)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", tserrors.ErrNotLoggedIn
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return token, nil
}

// SetToken stores the token for employee.
func SetToken(employee, token string) error {
	if employee == "" {
		return tserrors.ErrSyncNotConfigured
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(Service, employee, token); err != nil {
		return fmt.Errorf("store token in keyring: %w", err)
	}
	return nil
}

// DeleteToken removes the token for employee.
func DeleteToken(employee string) error {
	if err := keyring.Delete(Service, employee); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return tserrors.ErrNotLoggedIn
		}
		return fmt.Errorf("delete token from keyring: %w", err)
	}
	return nil
}

// IsAvailable reports whether the OS keyring answers at all.
func IsAvailable() bool {
	_, err := keyring.Get(Service, "availability-check")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
