package format

import (
	"math"
	"strconv"
)

// FormatValue formats a fitted quantity for table display with the given
// number of significant digits. Very large or very small magnitudes switch
// to exponent notation; NaN renders as "-" so unfitted columns stay
// readable.
func FormatValue(v float64, digits int) string {
	switch {
	case math.IsNaN(v):
		return "-"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case v == 0:
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e6 || abs < 1e-4 {
		return strconv.FormatFloat(v, 'e', digits-1, 64)
	}
	return strconv.FormatFloat(v, 'g', digits, 64)
}

// FormatPercent formats a ratio as a percentage with one decimal.
func FormatPercent(ratio float64) string {
	if math.IsNaN(ratio) {
		return "-"
	}
	return strconv.FormatFloat(ratio*100, 'f', 1, 64) + "%"
}
