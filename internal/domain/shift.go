package domain

import "time"

// Day is a business-day date in "2006-01-02" form, computed by Clock.
type Day string

// ShiftRecord is the per-user, per-business-day ledger row.
// A record is created either by an explicit start or by the first lead
// credit of the day (a stub with Started=false and no StartTime).
type ShiftRecord struct {
	ID              int64
	UserID          int64
	BusinessDay     Day
	StartTime       *time.Time // nil until the user signals start
	EndTime         *time.Time // nil while the shift is open
	Leads           int
	ReportSubmitted bool
	Started         bool
	CreatedAt       time.Time
}

// Open reports whether the shift has been started and not yet closed.
func (r *ShiftRecord) Open() bool {
	return r.StartTime != nil && r.EndTime == nil
}

// Duration returns the worked interval and whether it is known.
// Records missing either boundary have no measurable duration.
func (r *ShiftRecord) Duration() (time.Duration, bool) {
	if r.StartTime == nil || r.EndTime == nil {
		return 0, false
	}
	return r.EndTime.Sub(*r.StartTime), true
}

// DailySummary describes one business day for user-facing stats.
type DailySummary struct {
	Day           Day
	Duration      time.Duration
	DurationKnown bool
	Leads         int
}

// TotalSummary aggregates a user's whole history. Open or stub records
// contribute zero duration but their leads still count.
type TotalSummary struct {
	TotalDuration time.Duration
	TotalLeads    int
}
