package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Thursday 2025-07-10 15:04 in UTC
var refNow = time.Date(2025, 7, 10, 15, 4, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"empty", "", time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)},
		{"today", "today", time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)},
		{"yesterday", "Yesterday", time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)},
		{"tomorrow", "tomorrow", time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)},
		{"iso", "2025-06-30", time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input, refNow)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("natural_language", func(t *testing.T) {
		got, err := ParseDate("3 days ago", refNow)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("keeps_location", func(t *testing.T) {
		detroit, err := time.LoadLocation("America/Detroit")
		require.NoError(t, err)
		got, err := ParseDate("today", refNow.In(detroit))
		require.NoError(t, err)
		assert.Equal(t, detroit, got.Location())
		assert.Equal(t, 0, got.Hour())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseDate("qwerty zxcv", refNow)
		assert.Error(t, err)
	})
}

func TestParseDateRange(t *testing.T) {
	t.Run("defaults_to_current_week", func(t *testing.T) {
		from, to, err := ParseDateRange("", "", refNow)
		require.NoError(t, err)
		assert.Equal(t, time.Sunday, from.Weekday())
		assert.Equal(t, time.Date(2025, 7, 6, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC), to)
	})

	t.Run("explicit", func(t *testing.T) {
		from, to, err := ParseDateRange("2025-07-01", "2025-07-03", refNow)
		require.NoError(t, err)
		assert.Equal(t, 1, from.Day())
		assert.Equal(t, 3, to.Day())
	})

	t.Run("backwards", func(t *testing.T) {
		_, _, err := ParseDateRange("2025-07-03", "2025-07-01", refNow)
		assert.Error(t, err)
	})
}

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []time.Weekday
	}{
		{"empty_is_all", "", allWeekdays()},
		{"all", "ALL", allWeekdays()},
		{"weekdays", "weekdays", []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}},
		{"weekend", "weekend", []time.Weekday{time.Sunday, time.Saturday}},
		{"list", "fri, Mon", []time.Weekday{time.Monday, time.Friday}},
		{"range", "mon-wed", []time.Weekday{time.Monday, time.Tuesday, time.Wednesday}},
		{"duplicates", "mon,monday,mon-tue", []time.Weekday{time.Monday, time.Tuesday}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWeekdays(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("unknown_day", func(t *testing.T) {
		_, err := ParseWeekdays("mon,funday")
		assert.Error(t, err)
	})

	t.Run("backwards_range", func(t *testing.T) {
		_, err := ParseWeekdays("fri-mon")
		assert.Error(t, err)
	})
}
