// Package parser parses the duration, date and weekday inputs accepted by
// the timesheet CLI.
package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/manav03panchal/timesheet/internal/errors"
)

// Kind classifies a duration input.
type Kind int

const (
	// KindInvalid is input that is neither shorthand nor canonical.
	KindInvalid Kind = iota
	// KindCanonical is a strict HH:MM:SS string.
	KindCanonical
	// KindShorthand is a number with an optional h or m suffix.
	KindShorthand
)

func (k Kind) String() string {
	switch k {
	case KindCanonical:
		return "canonical"
	case KindShorthand:
		return "shorthand"
	default:
		return "invalid"
	}
}

// Unit is the unit of a shorthand duration.
type Unit string

const (
	UnitHours   Unit = "h"
	UnitMinutes Unit = "m"
)

// Duration is the classified form of a duration input.
type Duration struct {
	Kind  Kind
	Raw   string
	Value float64 // shorthand only
	Unit  Unit    // shorthand only
}

const secondsPerDay = 24 * 3600

var (
	// shorthandRegex matches a number with an optional h/m suffix.
	shorthandRegex = regexp.MustCompile(`^\d+(\.\d+)?([HhMm])?$`)
	// strictTimeRegex matches HH:MM:SS with hours 0-23.
	strictTimeRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5]?[0-9]):([0-5]?[0-9])$`)
	// canonicalRegex matches HH:MM:SS with unbounded hours.
	canonicalRegex = regexp.MustCompile(`^(\d+):([0-5]?[0-9]):([0-5]?[0-9])$`)
	// leadingNumberRegex extracts the numeric prefix of a shorthand value.
	leadingNumberRegex = regexp.MustCompile(`^\s*(\d+(?:\.\d*)?|\.\d+)`)
)

// ParseDurationInput classifies input. Surrounding whitespace is ignored.
func ParseDurationInput(input string) Duration {
	s := strings.TrimSpace(input)
	d := Duration{Raw: s}

	if shorthandRegex.MatchString(s) {
		unit := UnitMinutes
		numeric := s
		if last := s[len(s)-1]; last == 'h' || last == 'H' {
			unit = UnitHours
			numeric = s[:len(s)-1]
		} else if last == 'm' || last == 'M' {
			numeric = s[:len(s)-1]
		}
		v, err := strconv.ParseFloat(numeric, 64)
		if err != nil {
			return d
		}
		d.Kind = KindShorthand
		d.Value = v
		d.Unit = unit
		return d
	}

	if strictTimeRegex.MatchString(s) {
		d.Kind = KindCanonical
	}
	return d
}

// TotalSeconds returns the unrounded number of seconds a shorthand value
// denotes. It is zero for other kinds.
func (d Duration) TotalSeconds() float64 {
	if d.Kind != KindShorthand {
		return 0
	}
	if d.Unit == UnitHours {
		return d.Value * 3600
	}
	return d.Value * 60
}

// Canonical returns the HH:MM:SS form of d and whether d is valid.
// Shorthand hours wrap modulo 24.
func (d Duration) Canonical() (string, bool) {
	switch d.Kind {
	case KindCanonical:
		return d.Raw, true
	case KindShorthand:
		return formatComponents(d.TotalSeconds()), true
	default:
		return "", false
	}
}

// formatComponents renders fractional seconds as HH:MM:SS. Seconds are
// rounded, and each component wraps independently.
func formatComponents(totalSeconds float64) string {
	hours := int64(math.Floor(totalSeconds / 3600))
	minutes := int64(math.Floor(math.Mod(totalSeconds, 3600) / 60))
	seconds := int64(math.Round(math.Mod(totalSeconds, 60)))
	return fmt.Sprintf("%02d:%02d:%02d", hours%24, minutes%60, seconds%60)
}

// ParseWithSuffix converts a shorthand value to HH:MM:SS.
//
// A trailing h or H means hours and a trailing m or M means minutes. A value
// without a suffix or colon is minutes. Anything else, including input
// without a leading number, is returned unchanged.
func ParseWithSuffix(input string) string {
	lower := strings.ToLower(input)
	match := leadingNumberRegex.FindStringSubmatch(input)
	if match == nil {
		return input
	}
	n, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return input
	}

	switch {
	case strings.HasSuffix(lower, "h"):
		return formatComponents(n * 3600)
	case strings.HasSuffix(lower, "m"):
		return formatComponents(n * 60)
	case !strings.Contains(input, ":"):
		return formatComponents(n * 60)
	default:
		return input
	}
}

// IsValidTimeFormat reports whether input is a shorthand value that converts
// to a valid HH:MM:SS, or is already a strict HH:MM:SS with hours below 24.
func IsValidTimeFormat(input string) bool {
	if shorthandRegex.MatchString(input) {
		last := input[len(input)-1]
		value := input
		if last >= '0' && last <= '9' {
			value += "m"
		}
		return strictTimeRegex.MatchString(ParseWithSuffix(value))
	}
	return strictTimeRegex.MatchString(input)
}

// ResolveSeconds returns the total seconds input denotes, or a
// ValidationError when the input is not a valid duration. Shorthand values
// of 24 hours or more are rejected instead of wrapping.
func ResolveSeconds(input string) (int64, error) {
	d := ParseDurationInput(input)
	switch d.Kind {
	case KindCanonical:
		return TimeToSeconds(d.Raw)
	case KindShorthand:
		if d.TotalSeconds() >= secondsPerDay {
			return 0, newDurationError(d.Raw, "must be less than 24 hours")
		}
		canonical, _ := d.Canonical()
		return TimeToSeconds(canonical)
	default:
		if d.Raw == "" {
			return 0, newDurationError(d.Raw, "is required")
		}
		return 0, newDurationError(d.Raw, "expected HH:MM:SS or a number with an optional h or m suffix")
	}
}

// FormatDuration renders seconds as zero-padded HH:MM:SS with unbounded
// hours. Negative input renders as 00:00:00.
func FormatDuration(totalSeconds int64) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", totalSeconds/3600, (totalSeconds%3600)/60, totalSeconds%60)
}

// SecondsToTime is FormatDuration under the name used by edit forms.
func SecondsToTime(seconds int64) string {
	return FormatDuration(seconds)
}

// TimeToSeconds converts HH:MM:SS with unbounded hours to seconds.
func TimeToSeconds(hhmmss string) (int64, error) {
	m := canonicalRegex.FindStringSubmatch(strings.TrimSpace(hhmmss))
	if m == nil {
		return 0, newDurationError(hhmmss, "expected HH:MM:SS")
	}
	h, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, newDurationError(hhmmss, "hours out of range")
	}
	mins, _ := strconv.ParseInt(m[2], 10, 64)
	secs, _ := strconv.ParseInt(m[3], 10, 64)
	return h*3600 + mins*60 + secs, nil
}

// FormatCompact renders seconds as "1h 30m" style for narrow displays.
func FormatCompact(totalSeconds int64) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", totalSeconds%60)
	}
}

// IsInvalidDuration reports whether err is a rejected duration input.
func IsInvalidDuration(err error) bool {
	return errors.Is(err, errors.ErrInvalidDuration)
}
