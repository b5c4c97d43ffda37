package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration formats a run or fit duration for display:
// whole microseconds below a millisecond, milliseconds with one decimal
// below a second, and the duration rounded to the millisecond otherwise.
// Negative durations render as zero.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < 0:
		return "0µs"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	default:
		return d.Round(time.Millisecond).String()
	}
}
