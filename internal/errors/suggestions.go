package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	// User input errors
	ErrEntryNotFound:      "Use 'timesheet entries' to list entry ids for a day.",
	ErrAmbiguousEntry:     "Type more characters of the entry id.",
	ErrNoRunningTimer:     "Use 'timesheet start <entry>' or 'timesheet start --new' to start a timer.",
	ErrBillingNotFound:    "Use 'timesheet billing list --archived' to see billing managers.",
	ErrClientRequired:     "Pass --client to name the client the work is billed to.",
	ErrInvalidDuration:    "Use HH:MM:SS, or a number with h or m such as 1.5h, 90m or 45.",
	ErrInvalidDate:        "Try 'today', 'yesterday', 'last friday' or 2025-07-10.",
	ErrInvalidWeekday:     "Use day names sun, mon, tue, wed, thu, fri or sat.",
	ErrInvalidTimezone:    "Use an IANA zone name such as America/Detroit or Europe/Berlin.",
	ErrInvalidBillingType: "Billing type must be Billable or Non-Billable.",
	ErrUnknownSetting:     "Use 'timesheet settings list' to see known settings.",
	ErrSyncNotConfigured:  "Set sync.url and sync.employee in the config file, or TIMESHEET_SYNC_URL and TIMESHEET_EMPLOYEE.",
	ErrNotLoggedIn:        "Use 'timesheet sync login' to store a token.",
	ErrUnauthorized:       "The stored token was rejected. Run 'timesheet sync login' again.",

	// System errors
	ErrDatabaseBusy:       "Another timesheet process is using the database. Try again in a moment.",
	ErrDiskFull:           "Free up disk space and try again.",
	ErrNetworkUnavailable: "Check your network connection. Unsynced records are pushed on the next sync.",
	ErrTimeout:            "The operation took too long. Try again or raise sync.timeout.",
	ErrPermissionDenied:   "Check file permissions in your data directory (~/.local/share/timesheet/).",
}

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	// Check if it's a UserError with a suggestion
	var ue *UserError
	if errors.As(err, &ue) && ue.Suggestion != "" {
		return ue.Suggestion
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	return ""
}

// CommandExamples provides example commands for common errors.
var CommandExamples = map[error][]string{
	ErrNoRunningTimer: {
		"timesheet start 1a2b3c4d",
		"timesheet start --new --client Acme --project P-100 --task T-1",
	},
	ErrNotLoggedIn: {
		"timesheet sync login --token <token>",
		"timesheet serve token <employee>",
	},
}

// GetExamples returns example commands for an error.
func GetExamples(err error) []string {
	for knownErr, examples := range CommandExamples {
		if errors.Is(err, knownErr) {
			return examples
		}
	}
	return nil
}

// FormatDebugError formats an error with its chain and category.
func FormatDebugError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Error: ")
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	if chain := Chain(err); len(chain) > 1 {
		sb.WriteString("\nError chain:\n")
		for i, msg := range chain {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, msg)
		}
	}

	fmt.Fprintf(&sb, "\nCategory: %s\n", Classify(err))
	return sb.String()
}
