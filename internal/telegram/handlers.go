package telegram

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/derssen/controller-bot/internal/domain"
)

// --- Core commands ---

func (r *Router) handleStart(chatID, userID int64) {
	if !r.cfg.IsAdmin(userID) {
		r.sendText(chatID, noAccessText)
		return
	}
	msg := tgbotapi.NewMessage(chatID, adminGreeting)
	msg.ReplyMarkup = adminMenuKeyboard()
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Error(err))
	}
}

func (r *Router) handleHelp(chatID, userID int64) {
	if r.cfg.IsAdmin(userID) {
		r.sendText(chatID, helpText)
		return
	}
	r.sendText(chatID, helpNoAccess)
}

// --- Worker shift flow ---

// language returns the user's configured locale, defaulting to ru.
func (r *Router) language(ctx context.Context, userID int64) string {
	p, err := r.repo.GetStaff(ctx, userID)
	if err != nil {
		return "ru"
	}
	return p.Language
}

// rememberGroup records the chat the user works from so reminders land
// in the right place. Best effort.
func (r *Router) rememberGroup(ctx context.Context, userID, chatID int64) {
	if err := r.repo.SetStaffGroup(ctx, userID, chatID); err != nil {
		r.log.Warn("set staff group failed", zap.Error(err), zap.Int64("user_id", userID))
	}
}

func (r *Router) handleShiftStart(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	lang := r.language(ctx, userID)
	r.rememberGroup(ctx, userID, chatID)

	err := r.svc.StartDay(ctx, userID, r.svc.Clock().Now())
	switch {
	case errors.Is(err, domain.ErrAlreadyStarted):
		r.sendText(chatID, pick(lang, alreadyStartedRu, alreadyStartedEn))
		return
	case err != nil:
		r.log.Error("start day failed", zap.Error(err), zap.Int64("user_id", userID))
		return
	}

	r.sendText(chatID, randomPhrase(lang))
	r.sendText(chatID, pick(lang, startedRu, startedEn))
}

func (r *Router) handleShiftStop(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	lang := r.language(ctx, userID)
	r.rememberGroup(ctx, userID, chatID)

	daily, total, err := r.svc.StopDay(ctx, userID, r.svc.Clock().Now())
	switch {
	case errors.Is(err, domain.ErrNoActiveShift):
		r.sendText(chatID, pick(lang, notStartedRu, notStartedEn))
		return
	case err != nil:
		r.log.Error("stop day failed", zap.Error(err), zap.Int64("user_id", userID))
		return
	}

	r.sendText(chatID, pick(lang, finishedRu, finishedEn))
	r.sendText(chatID, fmt.Sprintf(pick(lang, dailyStatsRuFmt, dailyStatsEnFmt),
		domain.FormatDuration(daily.Duration, lang), daily.Leads))
	r.sendText(chatID, fmt.Sprintf(pick(lang, totalStatsRuFmt, totalStatsEnFmt),
		domain.FormatDuration(total.TotalDuration, lang), total.TotalLeads))
}

// handleOther mirrors worker messages to the log chat and detects the
// daily report hashtag in text or photo caption.
func (r *Router) handleOther(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	if r.cfg.LogChatID != 0 {
		fwd := tgbotapi.NewForward(r.cfg.LogChatID, msg.Chat.ID, msg.MessageID)
		if _, err := r.bot.Send(fwd); err != nil {
			r.log.Warn("forward to log chat failed", zap.Error(err))
		}
	}

	content := msg.Text
	if content == "" {
		content = msg.Caption
	}
	lower := strings.ToLower(content)
	if strings.Contains(lower, "#отчет") || strings.Contains(lower, "#report") {
		if err := r.svc.MarkReportSubmitted(ctx, userID, r.svc.Clock().Now()); err != nil {
			r.log.Error("mark report failed", zap.Error(err), zap.Int64("user_id", userID))
			return
		}
		r.log.Info("report received", zap.Int64("user_id", userID))
	}
}

// --- Admin: add staff ---

func (r *Router) beginAddStaff(chatID int64) {
	r.setFlow(chatID, &adminFlow{step: pendingUserID})
	r.sendText(chatID, askUserIDText)
}

func (r *Router) beginDelStaff(chatID int64) {
	r.setFlow(chatID, &adminFlow{step: pendingDelName})
	r.sendText(chatID, askDelNameText)
}

// handleFlowInput advances whichever admin dialog is pending in the chat.
func (r *Router) handleFlowInput(ctx context.Context, chatID int64, msg *tgbotapi.Message) {
	flow := r.getFlow(chatID)
	text := strings.TrimSpace(msg.Text)

	switch flow.step {
	case pendingUserID:
		if msg.ForwardFrom != nil {
			flow.draft.UserID = msg.ForwardFrom.ID
			flow.draft.Username = msg.ForwardFrom.UserName
		} else if id, err := strconv.ParseInt(text, 10, 64); err == nil {
			flow.draft.UserID = id
		} else {
			r.sendText(chatID, "Неправильный формат. Перешлите сообщение или введите user_id (числом).")
			return
		}
		flow.step = "" // waiting on the rank callback now
		reply := tgbotapi.NewMessage(chatID, askRankText)
		reply.ReplyMarkup = ranksKeyboard()
		if _, err := r.bot.Send(reply); err != nil {
			r.log.Warn("send failed", zap.Error(err))
		}

	case pendingRealName:
		if text == "" {
			r.sendText(chatID, askNameText)
			return
		}
		flow.draft.RealName = text
		flow.step = pendingLanguage
		r.sendText(chatID, askLangText)

	case pendingLanguage:
		lang := strings.ToLower(text)
		if lang != "ru" && lang != "en" {
			r.sendText(chatID, badLangText)
			return
		}
		flow.draft.Language = lang
		if flow.draft.Rank == domain.RankTeamLead {
			// Team leads answer to themselves.
			flow.draft.LeadUsername = flow.draft.Username
			r.saveStaff(ctx, chatID, flow)
			return
		}
		leads := r.teamLeads(ctx)
		if len(leads) == 0 {
			// No leads registered yet; save without one.
			r.saveStaff(ctx, chatID, flow)
			return
		}
		flow.step = "" // waiting on the lead callback
		reply := tgbotapi.NewMessage(chatID, askLeadText)
		reply.ReplyMarkup = leadsKeyboard(leads)
		if _, err := r.bot.Send(reply); err != nil {
			r.log.Warn("send failed", zap.Error(err))
		}

	case pendingDelName:
		deleted, err := r.repo.DeleteStaffByName(ctx, text)
		if err != nil {
			r.log.Error("delete staff failed", zap.Error(err))
			r.sendText(chatID, "Не удалось удалить пользователя, попробуйте позже.")
			return
		}
		r.clearFlow(chatID)
		if deleted {
			r.sendText(chatID, fmt.Sprintf("Пользователь %s удалён.", text))
		} else {
			r.sendText(chatID, fmt.Sprintf("Пользователь %s не найден.", text))
		}
	}
}

func (r *Router) handleRankChosen(chatID int64, rankStr string) {
	flow := r.getFlow(chatID)
	if flow == nil || flow.draft.UserID == 0 {
		return
	}
	rank, err := strconv.Atoi(rankStr)
	if err != nil || rank < 1 || rank > 3 {
		return
	}
	flow.draft.Rank = domain.Rank(rank)
	flow.step = pendingRealName
	r.sendText(chatID, askNameText)
}

func (r *Router) handleLeadChosen(ctx context.Context, chatID int64, leadUsername string) {
	flow := r.getFlow(chatID)
	if flow == nil || flow.draft.RealName == "" {
		return
	}
	flow.draft.LeadUsername = leadUsername
	r.saveStaff(ctx, chatID, flow)
}

func (r *Router) saveStaff(ctx context.Context, chatID int64, flow *adminFlow) {
	if err := r.repo.UpsertStaff(ctx, &flow.draft); err != nil {
		r.log.Error("upsert staff failed", zap.Error(err))
		r.sendText(chatID, "Не удалось сохранить пользователя, попробуйте позже.")
		return
	}
	r.clearFlow(chatID)
	r.sendText(chatID, fmt.Sprintf("%s %s (user_id=%d) добавлен. Язык=%s.",
		flow.draft.Rank, flow.draft.RealName, flow.draft.UserID, flow.draft.Language))
}

func (r *Router) teamLeads(ctx context.Context) []domain.StaffProfile {
	all, err := r.repo.ListStaff(ctx)
	if err != nil {
		r.log.Error("list staff failed", zap.Error(err))
		return nil
	}
	var leads []domain.StaffProfile
	for _, p := range all {
		if p.Rank == domain.RankTeamLead {
			leads = append(leads, p)
		}
	}
	return leads
}

// --- Admin: roster and export ---

func (r *Router) handleListStaff(ctx context.Context, chatID int64) {
	all, err := r.repo.ListStaff(ctx)
	if err != nil {
		r.log.Error("list staff failed", zap.Error(err))
		r.sendText(chatID, "Не удалось получить список сотрудников.")
		return
	}
	if len(all) == 0 {
		r.sendText(chatID, "Сотрудники ещё не добавлены.")
		return
	}
	var b strings.Builder
	var lastRank domain.Rank
	for _, p := range all {
		if p.Rank != lastRank {
			if lastRank != 0 {
				b.WriteString("\n")
			}
			b.WriteString(p.Rank.String() + ":\n")
			lastRank = p.Rank
		}
		b.WriteString("  " + p.RealName)
		if p.Username != "" {
			b.WriteString(" (@" + p.Username + ")")
		}
		b.WriteString("\n")
	}
	r.sendText(chatID, b.String())
}

func (r *Router) handleExport(ctx context.Context, chatID int64) {
	r.sendText(chatID, "Обновление таблицы запущено...")
	if err := r.exporter.Export(ctx); err != nil {
		r.log.Error("export failed", zap.Error(err))
		r.sendText(chatID, "Не удалось обновить таблицу.")
		return
	}
	r.sendText(chatID, "Обновлено!")
}

// --- helpers ---

func pick(lang, ru, en string) string {
	if lang == "en" {
		return en
	}
	return ru
}

func randomPhrase(lang string) string {
	if lang == "en" {
		return phrasesEn[rand.Intn(len(phrasesEn))]
	}
	return phrasesRu[rand.Intn(len(phrasesRu))]
}
