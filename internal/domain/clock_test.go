package domain

import (
	"testing"
	"time"
)

// helper: build a time in given tz
func mustLocal(t *testing.T, tz string, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	return time.Date(y, m, d, hh, mm, 0, 0, loc)
}

func TestBusinessDayOf_MidnightBoundary(t *testing.T) {
	c, err := NewClock("Asia/Makassar", 0)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	at := mustLocal(t, "Asia/Makassar", 2025, time.March, 10, 9, 30)
	if got := c.BusinessDayOf(at); got != Day("2025-03-10") {
		t.Fatalf("want 2025-03-10, got %s", got)
	}
	// Just before midnight still belongs to the same day.
	at = mustLocal(t, "Asia/Makassar", 2025, time.March, 10, 23, 59)
	if got := c.BusinessDayOf(at); got != Day("2025-03-10") {
		t.Fatalf("want 2025-03-10, got %s", got)
	}
}

func TestBusinessDayOf_ShiftedBoundary(t *testing.T) {
	// Boundary at 04:00: the small hours belong to the previous day.
	c, err := NewClock("Asia/Makassar", 4)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	at := mustLocal(t, "Asia/Makassar", 2025, time.March, 11, 2, 15)
	if got := c.BusinessDayOf(at); got != Day("2025-03-10") {
		t.Fatalf("want 2025-03-10, got %s", got)
	}
	at = mustLocal(t, "Asia/Makassar", 2025, time.March, 11, 4, 0)
	if got := c.BusinessDayOf(at); got != Day("2025-03-11") {
		t.Fatalf("want 2025-03-11, got %s", got)
	}
}

func TestBusinessDayOf_ConvertsToBusinessTZ(t *testing.T) {
	c, err := NewClock("Asia/Makassar", 0)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	// 18:30 UTC = 02:30 next day UTC+8.
	at := time.Date(2025, time.March, 10, 18, 30, 0, 0, time.UTC)
	if got := c.BusinessDayOf(at); got != Day("2025-03-11") {
		t.Fatalf("want 2025-03-11, got %s", got)
	}
}

func TestDayTime(t *testing.T) {
	c, err := NewClock("Asia/Makassar", 0)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	at, err := c.DayTime(Day("2025-03-10"), 23, 59)
	if err != nil {
		t.Fatalf("day time: %v", err)
	}
	want := mustLocal(t, "Asia/Makassar", 2025, time.March, 10, 23, 59)
	if !at.Equal(want) {
		t.Fatalf("want %v, got %v", want, at)
	}
	// Round-trip: the instant maps back to the same business day.
	if got := c.BusinessDayOf(at); got != Day("2025-03-10") {
		t.Fatalf("want 2025-03-10, got %s", got)
	}
}

func TestNewClock_Invalid(t *testing.T) {
	if _, err := NewClock("Not/AZone", 0); err == nil {
		t.Fatal("want error for bad timezone")
	}
	if _, err := NewClock("UTC", 24); err == nil {
		t.Fatal("want error for boundary hour out of range")
	}
}

func TestFormatDuration(t *testing.T) {
	d := 9*time.Hour + 5*time.Minute + 3*time.Second
	if got := FormatDuration(d, "ru"); got != "9 час(а) 5 минут(ы) 3 секунд(ы)" {
		t.Fatalf("unexpected ru format: %s", got)
	}
	if got := FormatDuration(d, "en"); got != "9 hour(s) 5 minute(s) 3 second(s)" {
		t.Fatalf("unexpected en format: %s", got)
	}
	if got := FormatDuration(-time.Minute, "en"); got != "0 hour(s) 0 minute(s) 0 second(s)" {
		t.Fatalf("negative duration should clamp to zero: %s", got)
	}
}

func TestShiftRecordDuration(t *testing.T) {
	start := mustLocal(t, "UTC", 2025, time.March, 10, 9, 0)
	end := mustLocal(t, "UTC", 2025, time.March, 10, 18, 0)

	r := &ShiftRecord{StartTime: &start, EndTime: &end}
	d, ok := r.Duration()
	if !ok || d != 9*time.Hour {
		t.Fatalf("want 9h known, got %v %v", d, ok)
	}

	stub := &ShiftRecord{Leads: 4}
	if _, ok := stub.Duration(); ok {
		t.Fatal("stub record must have unknown duration")
	}
	if stub.Open() {
		t.Fatal("stub record is not an open shift")
	}
	open := &ShiftRecord{StartTime: &start}
	if !open.Open() {
		t.Fatal("started record without end must be open")
	}
}
