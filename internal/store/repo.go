package store

import (
	"context"
	"time"

	"github.com/derssen/controller-bot/internal/domain"
)

// Repo defines storage operations for the shift ledger and staff roster.
//
// The mutating shift operations are single atomic statements scoped to
// one (user_id, business_day) row: two concurrent lead credits must both
// land, and close racing auto-close must produce exactly one end time.
type Repo interface {
	// StartShift opens the record for (userID, day), creating it if
	// absent. A pre-existing stub (leads before start) gets its start
	// time set without touching the accumulated leads. Returns false if
	// the record was already started or already closed.
	StartShift(ctx context.Context, userID int64, day domain.Day, at time.Time) (bool, error)

	// CloseShift sets end_time on the user's open shift, first writer
	// wins. Returns the closed record, or domain.ErrNoActiveShift.
	CloseShift(ctx context.Context, userID int64, at time.Time) (*domain.ShiftRecord, error)

	// CreditLeads adds count to the day's record, creating a stub
	// (started=false, no start time) when none exists.
	CreditLeads(ctx context.Context, userID int64, day domain.Day, count int, at time.Time) error

	// MarkReport flags the day's report as submitted, creating a stub
	// record if needed. Idempotent.
	MarkReport(ctx context.Context, userID int64, day domain.Day, at time.Time) error

	// CloseAllOpenBefore stamps end_time=cutoff on every open shift
	// started at or before cutoff. Idempotent; already-closed records
	// and never-started stubs are untouched. Returns rows closed.
	CloseAllOpenBefore(ctx context.Context, cutoff time.Time) (int64, error)

	GetRecord(ctx context.Context, userID int64, day domain.Day) (*domain.ShiftRecord, error)
	GetOpenShift(ctx context.Context, userID int64) (*domain.ShiftRecord, error)
	ListRecords(ctx context.Context, userID int64) ([]domain.ShiftRecord, error)

	// ListIncompleteReports returns staff user IDs with no submitted
	// report for the given business day.
	ListIncompleteReports(ctx context.Context, day domain.Day) ([]int64, error)

	UpsertStaff(ctx context.Context, p *domain.StaffProfile) error
	GetStaff(ctx context.Context, userID int64) (*domain.StaffProfile, error)
	DeleteStaffByName(ctx context.Context, realName string) (bool, error)
	ListStaff(ctx context.Context) ([]domain.StaffProfile, error)
	SetStaffGroup(ctx context.Context, userID, groupID int64) error

	Close() error
}
