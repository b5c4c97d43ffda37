package preprocess

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "github.com/agbru/dcafit/internal/errors"
)

// Granularity is the unit of the elapsed-time axis.
type Granularity int

const (
	// Daily measures elapsed time in whole days.
	Daily Granularity = iota
	// Monthly measures elapsed time in whole average Gregorian months.
	Monthly
	// Yearly measures elapsed time in whole average Gregorian years.
	Yearly
)

// Average Gregorian calendar lengths, in days.
const (
	daysPerMonth = 30.436875
	daysPerYear  = 365.2425
)

// String returns the lower-case name of the granularity.
func (g Granularity) String() string {
	switch g {
	case Daily:
		return "daily"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}

// Days returns the length of one unit in days.
func (g Granularity) Days() float64 {
	switch g {
	case Monthly:
		return daysPerMonth
	case Yearly:
		return daysPerYear
	default:
		return 1
	}
}

// ParseGranularity accepts daily, monthly or yearly (or day, month, year),
// case-insensitively.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day", "d":
		return Daily, nil
	case "monthly", "month", "m":
		return Monthly, nil
	case "yearly", "year", "y":
		return Yearly, nil
	}
	return Daily, apperrors.ValidationError{Field: "granularity", Message: fmt.Sprintf("unknown value %q, choose daily, monthly or yearly", s)}
}

// ElapsedTime maps dates to the time elapsed since the first one, in
// whole units of g, truncated toward zero.
func ElapsedTime(dates []time.Time, g Granularity) []float64 {
	out := make([]float64, len(dates))
	if len(dates) == 0 {
		return out
	}
	origin := dates[0]
	unit := g.Days() * 24 * float64(time.Hour)
	for i, d := range dates {
		out[i] = math.Trunc(float64(d.Sub(origin)) / unit)
	}
	return out
}
