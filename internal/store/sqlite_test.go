package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derssen/controller-bot/internal/domain"
)

func newTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func ts(h, m int) time.Time {
	return time.Date(2025, time.March, 10, h, m, 0, 0, time.UTC)
}

const day = domain.Day("2025-03-10")

func TestStartShift(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	started, err := repo.StartShift(ctx, 1, day, ts(9, 0))
	require.NoError(t, err)
	assert.True(t, started)

	rec, err := repo.GetRecord(ctx, 1, day)
	require.NoError(t, err)
	assert.True(t, rec.Started)
	require.NotNil(t, rec.StartTime)
	assert.True(t, rec.StartTime.Equal(ts(9, 0)))

	// Second start the same day is a no-op.
	started, err = repo.StartShift(ctx, 1, day, ts(10, 0))
	require.NoError(t, err)
	assert.False(t, started)

	rec, err = repo.GetRecord(ctx, 1, day)
	require.NoError(t, err)
	assert.True(t, rec.StartTime.Equal(ts(9, 0)), "first start time must survive")
}

func TestStartShift_AdoptsStub(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Webhook leads arrive before any explicit start.
	require.NoError(t, repo.CreditLeads(ctx, 1, day, 4, ts(8, 0)))

	rec, err := repo.GetRecord(ctx, 1, day)
	require.NoError(t, err)
	assert.False(t, rec.Started)
	assert.Nil(t, rec.StartTime)
	assert.Equal(t, 4, rec.Leads)

	started, err := repo.StartShift(ctx, 1, day, ts(9, 0))
	require.NoError(t, err)
	assert.True(t, started)

	rec, err = repo.GetRecord(ctx, 1, day)
	require.NoError(t, err)
	assert.True(t, rec.Started)
	assert.Equal(t, 4, rec.Leads, "start must not erase pre-existing leads")
}

func TestStartShift_RejectedAfterClose(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.StartShift(ctx, 1, day, ts(9, 0))
	require.NoError(t, err)
	_, err = repo.CloseShift(ctx, 1, ts(18, 0))
	require.NoError(t, err)

	started, err := repo.StartShift(ctx, 1, day, ts(19, 0))
	require.NoError(t, err)
	assert.False(t, started, "closed day must not reopen")

	rec, err := repo.GetRecord(ctx, 1, day)
	require.NoError(t, err)
	require.NotNil(t, rec.EndTime)
	assert.True(t, rec.EndTime.Equal(ts(18, 0)))
}

func TestCloseShift(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.StartShift(ctx, 1, day, ts(9, 0))
	require.NoError(t, err)

	rec, err := repo.CloseShift(ctx, 1, ts(18, 0))
	require.NoError(t, err)
	require.NotNil(t, rec.EndTime)
	d, ok := rec.Duration()
	assert.True(t, ok)
	assert.Equal(t, 9*time.Hour, d)

	// Second close: nothing open anymore.
	_, err = repo.CloseShift(ctx, 1, ts(19, 0))
	assert.ErrorIs(t, err, domain.ErrNoActiveShift)

	// And the stored end time is unchanged.
	stored, err := repo.GetRecord(ctx, 1, day)
	require.NoError(t, err)
	assert.True(t, stored.EndTime.Equal(ts(18, 0)))
}

func TestCloseShift_NoOpenShift(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CloseShift(context.Background(), 1, ts(18, 0))
	assert.ErrorIs(t, err, domain.ErrNoActiveShift)
}

func TestCreditLeads_Accumulates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreditLeads(ctx, 1, day, 3, ts(10, 0)))
	require.NoError(t, repo.CreditLeads(ctx, 1, day, 5, ts(14, 0)))

	rec, err := repo.GetRecord(ctx, 1, day)
	require.NoError(t, err)
	assert.Equal(t, 8, rec.Leads)
}

func TestCreditLeads_AfterClose(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.StartShift(ctx, 1, day, ts(9, 0))
	require.NoError(t, err)
	_, err = repo.CloseShift(ctx, 1, ts(18, 0))
	require.NoError(t, err)

	// Late leads land on the closed day without reopening it.
	require.NoError(t, repo.CreditLeads(ctx, 1, day, 2, ts(19, 0)))

	rec, err := repo.GetRecord(ctx, 1, day)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Leads)
	assert.NotNil(t, rec.EndTime)
	_, err = repo.GetOpenShift(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestCloseAllOpenBefore_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.StartShift(ctx, 1, day, ts(9, 0))
	require.NoError(t, err)
	_, err = repo.StartShift(ctx, 2, day, ts(10, 0))
	require.NoError(t, err)
	// A pure stub must not be swept.
	require.NoError(t, repo.CreditLeads(ctx, 3, day, 4, ts(9, 0)))

	cutoff := ts(23, 59)
	n, err := repo.CloseAllOpenBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CloseAllOpenBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Zero(t, n, "second sweep must change nothing")

	stub, err := repo.GetRecord(ctx, 3, day)
	require.NoError(t, err)
	assert.Nil(t, stub.EndTime)
	assert.False(t, stub.Started)
	assert.Equal(t, 4, stub.Leads)
}

func TestMarkReport_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.MarkReport(ctx, 1, day, ts(12, 0)))
	require.NoError(t, repo.MarkReport(ctx, 1, day, ts(13, 0)))

	rec, err := repo.GetRecord(ctx, 1, day)
	require.NoError(t, err)
	assert.True(t, rec.ReportSubmitted)
}

func TestListIncompleteReports(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, p := range []domain.StaffProfile{
		{UserID: 1, RealName: "Anna", Rank: domain.RankManager, Language: "ru"},
		{UserID: 2, RealName: "Boris", Rank: domain.RankManager, Language: "ru"},
		{UserID: 3, RealName: "Clara", Rank: domain.RankTeamLead, Language: "en"},
	} {
		p := p
		require.NoError(t, repo.UpsertStaff(ctx, &p))
	}
	require.NoError(t, repo.MarkReport(ctx, 2, day, ts(12, 0)))

	ids, err := repo.ListIncompleteReports(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)
}

func TestStaffRoster(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := &domain.StaffProfile{
		UserID:       10,
		RealName:     "Anna Petrova",
		Username:     "anna",
		Language:     "en",
		Rank:         domain.RankValidator,
		LeadUsername: "boss",
	}
	require.NoError(t, repo.UpsertStaff(ctx, p))

	got, err := repo.GetStaff(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Anna Petrova", got.RealName)
	assert.Equal(t, domain.RankValidator, got.Rank)
	assert.Equal(t, int64(10), got.NotifyTarget(), "no group yet, fall back to DM")

	require.NoError(t, repo.SetStaffGroup(ctx, 10, -100500))
	got, err = repo.GetStaff(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(-100500), got.NotifyTarget())

	all, err := repo.ListStaff(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	deleted, err := repo.DeleteStaffByName(ctx, "Anna Petrova")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.DeleteStaffByName(ctx, "Anna Petrova")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.GetStaff(ctx, 10)
	assert.ErrorIs(t, err, domain.ErrStaffNotFound)
}

func TestUniqueRecordPerUserDay(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.StartShift(ctx, 1, day, ts(9, 0))
	require.NoError(t, err)
	require.NoError(t, repo.CreditLeads(ctx, 1, day, 3, ts(10, 0)))
	require.NoError(t, repo.MarkReport(ctx, 1, day, ts(12, 0)))

	recs, err := repo.ListRecords(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1, "all paths must converge on one row per (user, day)")
	assert.Equal(t, 3, recs[0].Leads)
	assert.True(t, recs[0].ReportSubmitted)
	assert.True(t, recs[0].Started)
}

func TestMigrationsRunTwice(t *testing.T) {
	repo := newTestRepo(t)
	// Re-running against the same db must be a no-op.
	require.NoError(t, RunMigrations(context.Background(), repo.db))
}
