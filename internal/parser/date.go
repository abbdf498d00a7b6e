package parser

import (
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// isoDate is the layout accepted without natural-language parsing.
const isoDate = "2006-01-02"

// ParseDate parses a natural language date relative to now and returns
// local midnight of that date in now's location.
func ParseDate(input string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	loc := now.Location()

	switch s {
	case "", "today", "now":
		return midnight(now), nil
	case "yesterday":
		return midnight(now).AddDate(0, 0, -1), nil
	case "tomorrow":
		return midnight(now).AddDate(0, 0, 1), nil
	}

	if t, err := time.ParseInLocation(isoDate, s, loc); err == nil {
		return t, nil
	}

	// Use go-dateparser for natural language parsing
	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}

	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return time.Time{}, newDateError(input, "could not parse date")
	}

	return midnight(result.Time.In(loc)), nil
}

// ParseDateRange parses from and to dates. An empty from means the start of
// the week containing now (Sunday) and an empty to means six days after from.
func ParseDateRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if strings.TrimSpace(from) == "" {
		start = WeekStart(now)
	} else if start, err = ParseDate(from, now); err != nil {
		return time.Time{}, time.Time{}, err
	}

	if strings.TrimSpace(to) == "" {
		end = start.AddDate(0, 0, 6)
	} else if end, err = ParseDate(to, now); err != nil {
		return time.Time{}, time.Time{}, err
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, newDateError(to, "end date is before start date")
	}
	return start, end, nil
}

// WeekStart returns local midnight of the Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	d := midnight(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday parses a single case-insensitive day name.
func ParseWeekday(name string) (time.Weekday, error) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, newWeekdayError(name, "unknown day name")
	}
	return d, nil
}

// ParseWeekdays parses a comma separated list of day names. It also accepts
// ranges such as "mon-fri" and the words "all", "weekdays" and "weekend".
// An empty list selects every day.
func ParseWeekdays(list string) ([]time.Weekday, error) {
	list = strings.ToLower(strings.TrimSpace(list))
	switch list {
	case "", "all":
		return allWeekdays(), nil
	case "weekdays":
		return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, nil
	case "weekend":
		return []time.Weekday{time.Sunday, time.Saturday}, nil
	}

	seen := make(map[time.Weekday]bool)
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			from, err := ParseWeekday(lo)
			if err != nil {
				return nil, err
			}
			to, err := ParseWeekday(hi)
			if err != nil {
				return nil, err
			}
			if to < from {
				return nil, newWeekdayError(part, "range runs backwards")
			}
			for d := from; d <= to; d++ {
				seen[d] = true
			}
			continue
		}
		d, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		seen[d] = true
	}

	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if seen[d] {
			days = append(days, d)
		}
	}
	return days, nil
}

func allWeekdays() []time.Weekday {
	return []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}
