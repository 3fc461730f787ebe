package store

import (
	"database/sql"
	"time"

	"github.com/derssen/controller-bot/internal/domain"
)

// Timestamps are stored as UTC unix seconds; NULL means unset.

func toNullInt64(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().Unix(), Valid: true}
}

func fromNullInt64(ns sql.NullInt64) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := time.Unix(ns.Int64, 0).UTC()
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const shiftColumns = `id, user_id, business_day, start_time, end_time,
       leads, report_submitted, started, created_at`

// scanShift reads one shift_records row in shiftColumns order.
func scanShift(row interface{ Scan(...any) error }) (*domain.ShiftRecord, error) {
	var (
		r            domain.ShiftRecord
		day          string
		startNS      sql.NullInt64
		endNS        sql.NullInt64
		reportInt    int
		startedInt   int
		createdAtSec int64
	)
	if err := row.Scan(
		&r.ID, &r.UserID, &day, &startNS, &endNS,
		&r.Leads, &reportInt, &startedInt, &createdAtSec,
	); err != nil {
		return nil, err
	}
	r.BusinessDay = domain.Day(day)
	r.StartTime = fromNullInt64(startNS)
	r.EndTime = fromNullInt64(endNS)
	r.ReportSubmitted = reportInt != 0
	r.Started = startedInt != 0
	r.CreatedAt = time.Unix(createdAtSec, 0).UTC()
	return &r, nil
}

const staffColumns = `user_id, real_name, username, language, rank, lead_username, group_id, created_at`

func scanStaff(row interface{ Scan(...any) error }) (*domain.StaffProfile, error) {
	var (
		p            domain.StaffProfile
		rankInt      int
		createdAtSec int64
	)
	if err := row.Scan(
		&p.UserID, &p.RealName, &p.Username, &p.Language,
		&rankInt, &p.LeadUsername, &p.GroupID, &createdAtSec,
	); err != nil {
		return nil, err
	}
	p.Rank = domain.Rank(rankInt)
	p.CreatedAt = time.Unix(createdAtSec, 0).UTC()
	return &p, nil
}
