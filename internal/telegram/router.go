package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/derssen/controller-bot/internal/config"
	"github.com/derssen/controller-bot/internal/domain"
	"github.com/derssen/controller-bot/internal/ledger"
	"github.com/derssen/controller-bot/internal/store"
)

// Pending steps of the admin staff-management conversation.
const (
	pendingUserID   = "await_user_id"
	pendingRealName = "await_real_name"
	pendingLanguage = "await_language"
	pendingDelName  = "await_del_name"
)

// adminFlow holds the draft profile while an admin walks through the
// add-staff dialog (in-memory, per chat).
type adminFlow struct {
	step  string
	draft domain.StaffProfile
}

// Exporter triggers a spreadsheet rebuild from chat.
type Exporter interface {
	Export(ctx context.Context) error
}

// Router wires Telegram updates to handlers and holds the in-memory
// conversation state for admin flows.
type Router struct {
	bot      *tgbotapi.BotAPI
	log      *zap.Logger
	svc      *ledger.Service
	repo     store.Repo
	exporter Exporter
	cfg      config.Config

	state map[int64]*adminFlow
	mu    sync.RWMutex
}

func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, svc *ledger.Service, repo store.Repo, exporter Exporter, cfg config.Config) *Router {
	return &Router{
		bot:      bot,
		log:      log,
		svc:      svc,
		repo:     repo,
		exporter: exporter,
		cfg:      cfg,
		state:    make(map[int64]*adminFlow),
	}
}

func (r *Router) setFlow(chatID int64, f *adminFlow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = f
}

func (r *Router) getFlow(chatID int64) *adminFlow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[chatID]
}

func (r *Router) clearFlow(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		r.handleMessage(ctx, upd.Message)
		return
	}
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, upd.CallbackQuery)
		return
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	lower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(text, "/start"):
		r.handleStart(chatID, userID)
	case strings.HasPrefix(text, "/help"):
		r.handleHelp(chatID, userID)

	// Admin menu and dialogs.
	case r.cfg.IsAdmin(userID) && text == btnAddUser:
		r.beginAddStaff(chatID)
	case r.cfg.IsAdmin(userID) && text == btnDelUser:
		r.beginDelStaff(chatID)
	case r.cfg.IsAdmin(userID) && text == btnListStaff:
		r.handleListStaff(ctx, chatID)
	case r.cfg.IsAdmin(userID) && text == btnExport:
		r.handleExport(ctx, chatID)
	case r.cfg.IsAdmin(userID) && r.getFlow(chatID) != nil:
		r.handleFlowInput(ctx, chatID, msg)

	// Worker shift triggers.
	case startTriggers[lower]:
		r.handleShiftStart(ctx, msg)
	case stopTriggers[lower]:
		r.handleShiftStop(ctx, msg)

	default:
		r.handleOther(ctx, msg)
	}
}

func (r *Router) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID
	_, _ = r.bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	switch {
	case strings.HasPrefix(data, "rank:"):
		r.handleRankChosen(chatID, strings.TrimPrefix(data, "rank:"))
	case strings.HasPrefix(data, "lead:"):
		r.handleLeadChosen(ctx, chatID, strings.TrimPrefix(data, "lead:"))
	default:
		// Unknown callback, ignore.
	}
}

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// SendMessage sends a plain text message to the given chat.
// This makes Router satisfy scheduler.Sender.
func (r *Router) SendMessage(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
