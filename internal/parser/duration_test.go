package parser

import (
	"math/rand"
	"testing"

	"github.com/manav03panchal/timesheet/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
		value float64
		unit  Unit
	}{
		{"hours", "1.5h", KindShorthand, 1.5, UnitHours},
		{"hours_upper", "2H", KindShorthand, 2, UnitHours},
		{"minutes", "90m", KindShorthand, 90, UnitMinutes},
		{"minutes_upper", "90M", KindShorthand, 90, UnitMinutes},
		{"bare_number", "5", KindShorthand, 5, UnitMinutes},
		{"bare_fraction", "1.5", KindShorthand, 1.5, UnitMinutes},
		{"padded", "  45m ", KindShorthand, 45, UnitMinutes},
		{"canonical", "01:30:00", KindCanonical, 0, ""},
		{"canonical_short", "1:5:9", KindCanonical, 0, ""},
		{"canonical_hours_over_23", "25:00:00", KindInvalid, 0, ""},
		{"empty", "", KindInvalid, 0, ""},
		{"words", "abc", KindInvalid, 0, ""},
		{"go_style", "1h30m", KindInvalid, 0, ""},
		{"negative", "-5m", KindInvalid, 0, ""},
		{"trailing_dot", "5.", KindInvalid, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDurationInput(tt.input)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.value, d.Value)
			assert.Equal(t, tt.unit, d.Unit)
		})
	}
}

func TestDurationCanonical(t *testing.T) {
	c, ok := ParseDurationInput("1.5h").Canonical()
	assert.True(t, ok)
	assert.Equal(t, "01:30:00", c)

	c, ok = ParseDurationInput("02:03:04").Canonical()
	assert.True(t, ok)
	assert.Equal(t, "02:03:04", c)

	_, ok = ParseDurationInput("nope").Canonical()
	assert.False(t, ok)

	assert.Equal(t, "shorthand", KindShorthand.String())
	assert.Equal(t, "canonical", KindCanonical.String())
	assert.Equal(t, "invalid", KindInvalid.String())
}

func TestParseWithSuffix(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.5h", "01:30:00"},
		{"90m", "01:30:00"},
		{"5", "00:05:00"},
		{"1.5", "00:01:30"},
		{"0.5m", "00:00:30"},
		{"2H", "02:00:00"},
		{"45M", "00:45:00"},
		{"0.01h", "00:00:36"},
		{"1.333m", "00:01:20"},
		{"23.999h", "23:59:56"},
		// hours wrap modulo 24
		{"30h", "06:00:00"},
		{"24h", "00:00:00"},
		{"1500m", "01:00:00"},
		// passthrough
		{"10:30:00", "10:30:00"},
		{"abc", "abc"},
		{"", ""},
		{"-5m", "-5m"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseWithSuffix(tt.input))
		})
	}
}

func TestIsValidTimeFormat(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"1.5h", true},
		{"90m", true},
		{"5", true},
		{"30h", true},
		{"10:30:00", true},
		{"0:0:0", true},
		{"23:59:59", true},
		{"24:00:00", false},
		{"10:60:00", false},
		{"10:30", false},
		{"abc", false},
		{"", false},
		{" 5", false},
		{"1h30m", false},
		{"1.5hours", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidTimeFormat(tt.input))
		})
	}
}

func TestResolveSeconds(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tests := []struct {
			input    string
			expected int64
		}{
			{"1.5h", 5400},
			{"90m", 5400},
			{"5", 300},
			{"01:30:00", 5400},
			{"0", 0},
			{"23:59:59", 86399},
			{"23.99h", 86364},
		}
		for _, tt := range tests {
			got, err := ResolveSeconds(tt.input)
			require.NoError(t, err, tt.input)
			assert.Equal(t, tt.expected, got, tt.input)
		}
	})

	t.Run("rejects_wrapping_shorthand", func(t *testing.T) {
		for _, input := range []string{"24h", "30h", "1440m", "2000"} {
			_, err := ResolveSeconds(input)
			var ve *errors.ValidationError
			require.ErrorAs(t, err, &ve, input)
			assert.Contains(t, ve.Message, "24 hours")
			assert.True(t, IsInvalidDuration(err))
		}
	})

	t.Run("rejects_invalid", func(t *testing.T) {
		for _, input := range []string{"", "abc", "25:00:00", "1h30m"} {
			_, err := ResolveSeconds(input)
			assert.Error(t, err, input)
			assert.True(t, errors.IsValidationError(err), input)
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int64
		expected string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{125, "00:02:05"},
		{5400, "01:30:00"},
		{90000, "25:00:00"},
		{360000, "100:00:00"},
		{-5, "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.seconds))
			assert.Equal(t, tt.expected, SecondsToTime(tt.seconds))
		})
	}
}

func TestTimeToSeconds(t *testing.T) {
	got, err := TimeToSeconds("01:30:15")
	require.NoError(t, err)
	assert.Equal(t, int64(5415), got)

	got, err = TimeToSeconds("125:00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(450000), got)

	for _, bad := range []string{"", "1:2", "aa:bb:cc", "01:60:00"} {
		_, err := TimeToSeconds(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	samples := []int64{0, 1, 59, 60, 3599, 3600, 86399, 86400, 90000, 1 << 31}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		samples = append(samples, rng.Int63n(10_000_000))
	}

	for _, s := range samples {
		got, err := TimeToSeconds(FormatDuration(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestFormatCompact(t *testing.T) {
	assert.Equal(t, "1h 30m", FormatCompact(5400))
	assert.Equal(t, "2h", FormatCompact(7200))
	assert.Equal(t, "5m", FormatCompact(300))
	assert.Equal(t, "42s", FormatCompact(42))
	assert.Equal(t, "0s", FormatCompact(-1))
}
