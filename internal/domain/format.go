package domain

import (
	"fmt"
	"time"
)

// FormatDuration renders d as whole hours/minutes/seconds in the given
// language ("ru" or "en"). Sub-second precision is dropped.
func FormatDuration(d time.Duration, lang string) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if lang == "en" {
		return fmt.Sprintf("%d hour(s) %d minute(s) %d second(s)", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d час(а) %d минут(ы) %d секунд(ы)", hours, minutes, seconds)
}
