// Package validate checks and cleans user input before it is stored or
// sent to the sync server.
package validate

import (
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/manav03panchal/timesheet/internal/errors"
)

const (
	// MaxClientLength is the maximum length of a client name.
	MaxClientLength = 128
	// MaxCodeLength is the maximum length of a project or task code.
	MaxCodeLength = 64
	// MaxTextLength is the maximum length of a description or comment.
	MaxTextLength = 4096
	// MaxEmployeeLength is the maximum length of an employee id.
	MaxEmployeeLength = 64
	// MaxURLLength is the maximum length for a URL.
	MaxURLLength = 2048
)

// employeeRegex matches employee ids: letters, digits, dots, dashes,
// underscores and @.
var employeeRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._@-]*$`)

func tooLong(field, value string, max int) error {
	return errors.NewUserErrorWithField(field, TruncateString(value, 40),
		field+" too long",
		"Use "+strconv.Itoa(max)+" characters or fewer")
}

// Client validates a client name.
func Client(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewValidationError("client", "", "is required", errors.ErrClientRequired)
	}
	if utf8.RuneCountInString(name) > MaxClientLength {
		return tooLong("client", name, MaxClientLength)
	}
	return nil
}

// Code validates a project or task code. Empty is allowed.
func Code(field, code string) error {
	if utf8.RuneCountInString(code) > MaxCodeLength {
		return tooLong(field, code, MaxCodeLength)
	}
	if strings.ContainsAny(code, "\n\t") {
		return errors.NewUserErrorWithField(field, code, field+" must be a single line", "")
	}
	return nil
}

// Text validates a description or comment.
func Text(field, text string) error {
	if utf8.RuneCountInString(text) > MaxTextLength {
		return tooLong(field, text, MaxTextLength)
	}
	return nil
}

// Employee validates an employee id used for sync and tokens.
func Employee(id string) error {
	if id == "" {
		return errors.NewUserError("employee id cannot be empty", "Set sync.employee in the config file")
	}
	if len(id) > MaxEmployeeLength {
		return tooLong("employee", id, MaxEmployeeLength)
	}
	if !employeeRegex.MatchString(id) {
		return errors.NewUserErrorWithField("employee", id,
			"Invalid employee id",
			"Use letters, numbers, dots, dashes, underscores or @")
	}
	return nil
}

// SyncURL validates the sync server base URL. Plain http is allowed only
// for loopback hosts.
func SyncURL(rawURL string) error {
	if rawURL == "" {
		return errors.NewUserError("sync URL cannot be empty", "Set sync.url in the config file")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("sync URL too long", "URLs must be 2048 characters or fewer")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.NewUserErrorWithField("sync.url", rawURL,
			"Invalid URL format",
			"Use a URL like https://timesheet.example.com/api")
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.NewUserErrorWithField("sync.url", rawURL,
			"Invalid URL scheme",
			"URLs must use https:// (or http:// for localhost)")
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return errors.NewUserErrorWithField("sync.url", rawURL,
			"Invalid URL: missing hostname",
			"Use a URL like https://timesheet.example.com/api")
	}
	if parsed.Scheme == "http" && !isLoopback(hostname) {
		return errors.NewUserErrorWithField("sync.url", rawURL,
			"HTTP not allowed for remote servers",
			"Use https://. HTTP is only allowed for localhost.")
	}
	return nil
}

func isLoopback(hostname string) bool {
	if hostname == "localhost" {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}
