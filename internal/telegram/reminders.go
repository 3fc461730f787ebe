package telegram

import (
	"context"

	"go.uber.org/zap"
)

// SendReportReminders messages every staff member who has not submitted
// today's report. Run by the scheduler on weekdays.
func (r *Router) SendReportReminders(ctx context.Context) {
	day := r.svc.Clock().Today()
	ids, err := r.svc.ListIncompleteReports(ctx, day)
	if err != nil {
		r.log.Error("list incomplete reports failed", zap.Error(err))
		return
	}
	for _, id := range ids {
		p, err := r.repo.GetStaff(ctx, id)
		if err != nil {
			r.log.Warn("staff lookup failed", zap.Error(err), zap.Int64("user_id", id))
			continue
		}
		if err := r.SendMessage(p.NotifyTarget(), pick(p.Language, reminderRu, reminderEn)); err != nil {
			r.log.Warn("reminder send failed", zap.Error(err), zap.Int64("user_id", id))
		}
	}
	if len(ids) > 0 {
		r.log.Info("report reminders sent", zap.String("day", string(day)), zap.Int("count", len(ids)))
	}
}
