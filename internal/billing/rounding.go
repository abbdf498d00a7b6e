// Package billing converts tracked time into billable hours and builds the
// weekly rows uploaded to payroll.
package billing

import (
	"math"
	"strconv"
	"strings"
)

// bucket maps a range of remainder seconds within an hour to the tenths of
// an hour billed for it. Bounds are inclusive.
type bucket struct {
	lo, hi    int64
	increment float64
}

// buckets is the six-minute rounding table. The last bucket bills a full
// hour for the final five minutes.
var buckets = []bucket{
	{0, 59, 0.0},
	{60, 419, 0.1},
	{420, 779, 0.2},
	{780, 1139, 0.3},
	{1140, 1499, 0.4},
	{1500, 1859, 0.5},
	{1860, 2219, 0.6},
	{2220, 2579, 0.7},
	{2580, 2939, 0.8},
	{2940, 3299, 0.9},
	{3300, 3599, 1.0},
}

// ConvertBillingHours returns the billable hours for totalSeconds of work:
// whole hours plus the tenths increment for the remainder. It never panics
// and returns 0 for negative input.
func ConvertBillingHours(totalSeconds int64) (hours float64) {
	defer func() {
		if r := recover(); r != nil {
			hours = 0
		}
	}()

	if totalSeconds < 0 {
		return 0
	}

	whole := totalSeconds / 3600
	remainder := totalSeconds % 3600

	var increment float64
	for _, b := range buckets {
		if remainder >= b.lo && remainder <= b.hi {
			increment = b.increment
			break
		}
	}

	return RoundTenths(float64(whole) + increment)
}

// RoundTenths rounds h to one decimal place.
func RoundTenths(h float64) float64 {
	return math.Round(h*10) / 10
}

// FormatHours renders hours with one decimal using the given decimal mark.
// An empty mark means ".".
func FormatHours(h float64, decimalMark string) string {
	s := strconv.FormatFloat(h, 'f', 1, 64)
	if decimalMark != "" && decimalMark != "." {
		s = strings.Replace(s, ".", decimalMark, 1)
	}
	return s
}
