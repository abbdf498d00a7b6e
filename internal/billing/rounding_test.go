package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertBillingHours(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected float64
	}{
		{"zero", 0, 0},
		{"under_a_minute", 59, 0},
		{"one_minute", 60, 0.1},
		{"bucket_1_top", 419, 0.1},
		{"bucket_2_bottom", 420, 0.2},
		{"bucket_2_top", 779, 0.2},
		{"bucket_3", 780, 0.3},
		{"bucket_4", 1140, 0.4},
		{"half_hour", 1800, 0.5},
		{"bucket_6", 1860, 0.6},
		{"bucket_7", 2220, 0.7},
		{"bucket_8", 2580, 0.8},
		{"bucket_9_top", 3299, 0.9},
		{"last_bucket_bills_full_hour", 3300, 1.0},
		{"just_under_hour", 3599, 1.0},
		{"one_hour", 3600, 1.0},
		{"hour_and_59s", 3659, 1.0},
		{"hour_and_minute", 3660, 1.1},
		{"eight_hours_ten", 8*3600 + 600, 8.2},
		{"two_hours_fifty_five", 2*3600 + 3300, 3.0},
		{"negative", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConvertBillingHours(tt.seconds))
		})
	}
}

func TestConvertBillingHoursMonotonic(t *testing.T) {
	prev := 0.0
	for s := int64(0); s <= 4*3600; s += 7 {
		h := ConvertBillingHours(s)
		assert.GreaterOrEqual(t, h, prev, "seconds=%d", s)
		prev = h
	}
}

func TestRoundTenths(t *testing.T) {
	assert.Equal(t, 0.3, RoundTenths(0.1+0.2))
	assert.Equal(t, 1.3, RoundTenths(1.25))
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "1.5", FormatHours(1.5, ""))
	assert.Equal(t, "1.5", FormatHours(1.5, "."))
	assert.Equal(t, "1,5", FormatHours(1.5, ","))
	assert.Equal(t, "8.0", FormatHours(8, ""))
}
