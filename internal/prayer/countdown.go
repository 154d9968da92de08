package prayer

import (
	"fmt"
	"time"
)

// FormatCountdown renders d as zero-padded HH:MM:SS. Negative durations
// read as 00:00:00, sub-second remainders are floored and hours are not
// wrapped at 24.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Countdown is FormatCountdown(at - now).
func Countdown(now, at time.Time) string {
	return FormatCountdown(at.Sub(now))
}
