package domain

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Clock normalizes timestamps to the single business timezone and maps
// them onto business days. The day boundary is a fixed hour: a timestamp
// before boundaryHour belongs to the previous calendar date. All ledger
// operations go through one Clock so every feature agrees on what
// "today" means.
type Clock struct {
	loc          *time.Location
	boundaryHour int
}

// NewClock builds a Clock for the given IANA timezone and day-boundary
// hour (0..23, 0 = midnight).
func NewClock(tz string, boundaryHour int) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load business timezone: %w", err)
	}
	if boundaryHour < 0 || boundaryHour > 23 {
		return nil, fmt.Errorf("day boundary hour out of range: %d", boundaryHour)
	}
	return &Clock{loc: loc, boundaryHour: boundaryHour}, nil
}

// Now returns the current time in the business timezone.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the business timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// BusinessDayOf assigns t to a business day: shift back by the boundary
// hour, then truncate to the local date.
func (c *Clock) BusinessDayOf(t time.Time) Day {
	shifted := t.In(c.loc).Add(-time.Duration(c.boundaryHour) * time.Hour)
	return Day(shifted.Format(dayLayout))
}

// Today is BusinessDayOf(Now()).
func (c *Clock) Today() Day {
	return c.BusinessDayOf(time.Now())
}

// DayTime returns the instant of hour:minute on the given business day.
func (c *Clock) DayTime(d Day, hour, minute int) (time.Time, error) {
	base, err := time.ParseInLocation(dayLayout, string(d), c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse business day %q: %w", d, err)
	}
	base = base.Add(time.Duration(c.boundaryHour) * time.Hour)
	return base.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}
