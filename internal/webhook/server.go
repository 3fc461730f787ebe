package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/derssen/controller-bot/internal/domain"
)

// LeadCrediter is the slice of the ledger the webhook needs.
type LeadCrediter interface {
	CreditLeads(ctx context.Context, userID int64, count int, at time.Time) error
}

// leadPayload is the CRM's notification body. chat_id arrives as a
// string, that is how the CRM sends it.
type leadPayload struct {
	ChatID    string `json:"chat_id"`
	LeadCount int    `json:"lead_count"`
}

// Handler serves the CRM lead webhook and the health endpoint.
type Handler struct {
	ledger LeadCrediter
	clock  *domain.Clock
	log    *zap.Logger
}

func NewHandler(ledger LeadCrediter, clock *domain.Clock, log *zap.Logger) *Handler {
	return &Handler{ledger: ledger, clock: clock, log: log}
}

// Mux returns the webhook routes.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/update_leads", h.updateLeads)
	return mux
}

func (h *Handler) updateLeads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var p leadPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	userID, err := strconv.ParseInt(p.ChatID, 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid chat_id")
		return
	}

	h.log.Info("lead webhook received",
		zap.Int64("chat_id", userID),
		zap.Int("lead_count", p.LeadCount),
	)

	err = h.ledger.CreditLeads(r.Context(), userID, p.LeadCount, h.clock.Now())
	switch {
	case errors.Is(err, domain.ErrInvalidLeadCount):
		h.writeError(w, http.StatusBadRequest, "lead_count must be positive")
		return
	case errors.Is(err, domain.ErrStorageUnavailable):
		h.writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	case err != nil:
		h.log.Error("credit leads failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "success",
		"message":    "Data received",
		"chat_id":    p.ChatID,
		"lead_count": p.LeadCount,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": msg})
}
