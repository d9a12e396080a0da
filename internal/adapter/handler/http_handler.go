package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rl1809/catalog-bot/internal/adapter/telegram"
	"github.com/rl1809/catalog-bot/internal/core/domain"
	"github.com/rl1809/catalog-bot/internal/core/service"
)

const (
	secretHeader    = "X-Telegram-Bot-Api-Secret-Token"
	recentUpdateCap = 4096
)

type ActionSubmitter interface {
	Submit(ctx context.Context, action domain.Action) (<-chan error, error)
}

type CallbackAcker interface {
	AnswerCallback(ctx context.Context, callbackID string) error
}

type HTTPHandler struct {
	sessions ActionSubmitter
	acker    CallbackAcker
	secret   string
	recent   *lru.Cache[int64, struct{}]
	checks   map[string]Pinger
}

type WebhookResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// NewHTTPHandler builds the webhook and health endpoints. acker may be nil.
func NewHTTPHandler(sessions ActionSubmitter, acker CallbackAcker, secret string, checks map[string]Pinger) (*HTTPHandler, error) {
	recent, err := lru.New[int64, struct{}](recentUpdateCap)
	if err != nil {
		return nil, err
	}
	return &HTTPHandler{
		sessions: sessions,
		acker:    acker,
		secret:   secret,
		recent:   recent,
		checks:   checks,
	}, nil
}

// Webhook accepts one Telegram update. Telegram redelivers updates that were
// not answered with 2xx, so every update id is processed at most once and
// rejected updates are forgotten again to allow the retry.
func (h *HTTPHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.secret != "" && r.Header.Get(secretHeader) != h.secret {
		writeJSON(w, http.StatusUnauthorized, WebhookResponse{Message: "invalid secret"})
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, WebhookResponse{Message: "invalid update"})
		return
	}

	if seen, _ := h.recent.ContainsOrAdd(update.UpdateID, struct{}{}); seen {
		writeJSON(w, http.StatusOK, WebhookResponse{OK: true, Message: "duplicate"})
		return
	}

	action, ok := telegram.ToAction(update)
	if !ok {
		writeJSON(w, http.StatusOK, WebhookResponse{OK: true, Message: "ignored"})
		return
	}

	if update.CallbackQuery != nil && h.acker != nil {
		if err := h.acker.AnswerCallback(r.Context(), update.CallbackQuery.ID); err != nil {
			log.Printf("webhook: failed to answer callback %s: %v", update.CallbackQuery.ID, err)
		}
	}

	// The action outlives the request; its result is only logged by the
	// session worker.
	if _, err := h.sessions.Submit(context.WithoutCancel(r.Context()), action); err != nil {
		h.recent.Remove(update.UpdateID)

		status := http.StatusInternalServerError
		message := "internal error"
		if errors.Is(err, service.ErrSessionBusy) {
			status = http.StatusTooManyRequests
			message = "session busy"
		} else if errors.Is(err, service.ErrManagerClosed) {
			status = http.StatusServiceUnavailable
			message = "shutting down"
		}

		log.Printf("webhook: update %d rejected: %v", update.UpdateID, err)
		writeJSON(w, status, WebhookResponse{Message: message})
		return
	}

	writeJSON(w, http.StatusOK, WebhookResponse{OK: true})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	failures := checkAll(r.Context(), h.checks)
	if len(failures) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failures": failures})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
