package util

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatTicks formats a tick count as simulated time at fps ticks per
// second, e.g. "1:05 #3900".
func FormatTicks(ticks uint64, fps int) string {
	if fps < 1 {
		fps = 1
	}
	d := time.Duration(ticks) * time.Second / time.Duration(fps)
	return fmt.Sprintf("%s #%d", FormatDuration(d), ticks)
}
