package parser

import (
	"github.com/manav03panchal/timesheet/internal/errors"
)

// DurationExamples provides example duration formats.
var DurationExamples = []string{
	"01:30:00",
	"1.5h",
	"90m",
	"45 (minutes)",
}

// DateExamples provides example date formats.
var DateExamples = []string{
	"today",
	"yesterday",
	"last friday",
	"2025-07-10",
	"3 days ago",
}

// WeekdayExamples provides example weekday lists.
var WeekdayExamples = []string{
	"mon,tue,wed,thu,fri",
	"sun-sat",
	"weekdays",
}

func newDurationError(input, message string) *errors.ValidationError {
	return errors.NewValidationError("duration", input, message, errors.ErrInvalidDuration)
}

func newDateError(input, message string) *errors.ValidationError {
	return errors.NewValidationError("date", input, message, errors.ErrInvalidDate)
}

func newWeekdayError(input, message string) *errors.ValidationError {
	return errors.NewValidationError("weekday", input, message, errors.ErrInvalidWeekday)
}

// ExamplesFor returns example inputs for a parser error.
func ExamplesFor(err error) []string {
	switch {
	case errors.Is(err, errors.ErrInvalidDuration):
		return DurationExamples
	case errors.Is(err, errors.ErrInvalidDate):
		return DateExamples
	case errors.Is(err, errors.ErrInvalidWeekday):
		return WeekdayExamples
	default:
		return nil
	}
}
