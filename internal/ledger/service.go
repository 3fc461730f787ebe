package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/derssen/controller-bot/internal/domain"
	"github.com/derssen/controller-bot/internal/store"
)

// Service is the attendance and lead ledger: it owns the shift state
// machine (not started → open → closed), lead accumulation, and the
// daily/all-time summaries built from the ledger rows. The chat layer,
// the CRM webhook and the scheduler all call into it concurrently; the
// store guarantees each transition is atomic per (user, day) row.
type Service struct {
	repo  store.Repo
	clock *domain.Clock
	log   *zap.Logger
}

func New(repo store.Repo, clock *domain.Clock, log *zap.Logger) *Service {
	return &Service{repo: repo, clock: clock, log: log}
}

// Clock exposes the business calendar to collaborators (handlers,
// scheduler) so everyone resolves "today" identically.
func (s *Service) Clock() *domain.Clock {
	return s.clock
}

// StartDay opens the user's shift for the business day of `at`.
// A repeated start the same day returns ErrAlreadyStarted; so does a
// start after the day was closed (manually or by the sweep).
func (s *Service) StartDay(ctx context.Context, userID int64, at time.Time) error {
	day := s.clock.BusinessDayOf(at)
	started, err := s.repo.StartShift(ctx, userID, day, at)
	if err != nil {
		return fmt.Errorf("start day: %w", err)
	}
	if !started {
		return domain.ErrAlreadyStarted
	}
	s.log.Info("shift started",
		zap.Int64("user_id", userID),
		zap.String("day", string(day)),
	)
	return nil
}

// StopDay closes the user's open shift and returns the day's summary
// together with the all-time totals. ErrNoActiveShift when nothing is
// open; the caller turns that into a user-facing message.
func (s *Service) StopDay(ctx context.Context, userID int64, at time.Time) (domain.DailySummary, domain.TotalSummary, error) {
	rec, err := s.repo.CloseShift(ctx, userID, at)
	if err != nil {
		return domain.DailySummary{}, domain.TotalSummary{}, fmt.Errorf("stop day: %w", err)
	}
	s.log.Info("shift closed",
		zap.Int64("user_id", userID),
		zap.String("day", string(rec.BusinessDay)),
		zap.Int("leads", rec.Leads),
	)

	daily := summarize(rec)
	total, err := s.SummarizeAllTime(ctx, userID)
	if err != nil {
		return daily, domain.TotalSummary{}, err
	}
	return daily, total, nil
}

// CreditLeads adds count leads to the business day of `at`, creating a
// stub record when the user has none for that day. Tolerates any
// ordering relative to start/stop: leads before start are kept and
// adopted by a later start, leads after close do not reopen the day.
func (s *Service) CreditLeads(ctx context.Context, userID int64, count int, at time.Time) error {
	if count <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidLeadCount, count)
	}
	day := s.clock.BusinessDayOf(at)
	if err := s.repo.CreditLeads(ctx, userID, day, count, at); err != nil {
		return fmt.Errorf("credit leads: %w", err)
	}
	s.log.Info("leads credited",
		zap.Int64("user_id", userID),
		zap.String("day", string(day)),
		zap.Int("count", count),
	)
	return nil
}

// MarkReportSubmitted flags the day's report as received. Idempotent.
func (s *Service) MarkReportSubmitted(ctx context.Context, userID int64, at time.Time) error {
	day := s.clock.BusinessDayOf(at)
	if err := s.repo.MarkReport(ctx, userID, day, at); err != nil {
		return fmt.Errorf("mark report: %w", err)
	}
	return nil
}

// GetOpenShift returns the user's open shift, or nil if none.
func (s *Service) GetOpenShift(ctx context.Context, userID int64) (*domain.ShiftRecord, error) {
	rec, err := s.repo.GetOpenShift(ctx, userID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open shift: %w", err)
	}
	return rec, nil
}

// ListIncompleteReports returns staff user IDs with no submitted report
// for the given business day, for the reminder sweep.
func (s *Service) ListIncompleteReports(ctx context.Context, day domain.Day) ([]int64, error) {
	ids, err := s.repo.ListIncompleteReports(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list incomplete reports: %w", err)
	}
	return ids, nil
}

// AutoClose ends every shift still open at the cutoff, stamping
// end_time=cutoff. Idempotent: a second run with the same cutoff closes
// nothing. Never-started stubs are left alone.
func (s *Service) AutoClose(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.repo.CloseAllOpenBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("auto close: %w", err)
	}
	if n > 0 {
		s.log.Info("auto-closed open shifts",
			zap.Int64("count", n),
			zap.Time("cutoff", cutoff),
		)
	}
	return n, nil
}

// SummarizeDay builds the summary for one business day.
func (s *Service) SummarizeDay(ctx context.Context, userID int64, day domain.Day) (domain.DailySummary, error) {
	rec, err := s.repo.GetRecord(ctx, userID, day)
	if err != nil {
		return domain.DailySummary{}, fmt.Errorf("summarize day: %w", err)
	}
	return summarize(rec), nil
}

// SummarizeAllTime sums the user's whole history. Records without an
// end time contribute zero duration; their leads still count.
func (s *Service) SummarizeAllTime(ctx context.Context, userID int64) (domain.TotalSummary, error) {
	recs, err := s.repo.ListRecords(ctx, userID)
	if err != nil {
		return domain.TotalSummary{}, fmt.Errorf("summarize all time: %w", err)
	}
	var total domain.TotalSummary
	for i := range recs {
		if d, ok := recs[i].Duration(); ok {
			total.TotalDuration += d
		}
		total.TotalLeads += recs[i].Leads
	}
	return total, nil
}

func summarize(rec *domain.ShiftRecord) domain.DailySummary {
	d, ok := rec.Duration()
	return domain.DailySummary{
		Day:           rec.BusinessDay,
		Duration:      d,
		DurationKnown: ok,
		Leads:         rec.Leads,
	}
}
