package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/catalog-bot/internal/core/domain"
	"github.com/rl1809/catalog-bot/internal/core/service"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	actions []domain.Action
	err     error
}

func (f *fakeSubmitter) Submit(_ context.Context, a domain.Action) (<-chan error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.actions = append(f.actions, a)
	done := make(chan error, 1)
	done <- nil
	return done, nil
}

type fakeAcker struct {
	ids []string
}

func (f *fakeAcker) AnswerCallback(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

const startUpdate = `{"update_id":7,"message":{"message_id":1,"from":{"id":5},"chat":{"id":5},"text":"/start"}}`

func postUpdate(h *HTTPHandler, body, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(secretHeader, secret)
	}
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) WebhookResponse {
	t.Helper()
	var resp WebhookResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWebhook_SubmitsAction(t *testing.T) {
	sessions := &fakeSubmitter{}
	h, err := NewHTTPHandler(sessions, nil, "", nil)
	require.NoError(t, err)

	rec := postUpdate(h, startUpdate, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse(t, rec).OK)

	require.Len(t, sessions.actions, 1)
	assert.Equal(t, "start", sessions.actions[0].Command)
	assert.Equal(t, "7", sessions.actions[0].ID)
}

func TestWebhook_DropsDuplicateUpdates(t *testing.T) {
	sessions := &fakeSubmitter{}
	h, err := NewHTTPHandler(sessions, nil, "", nil)
	require.NoError(t, err)

	postUpdate(h, startUpdate, "")
	rec := postUpdate(h, startUpdate, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "duplicate", decodeResponse(t, rec).Message)
	assert.Len(t, sessions.actions, 1)
}

func TestWebhook_RejectsWrongSecret(t *testing.T) {
	sessions := &fakeSubmitter{}
	h, err := NewHTTPHandler(sessions, nil, "s3cret", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, postUpdate(h, startUpdate, "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, postUpdate(h, startUpdate, "").Code)
	assert.Equal(t, http.StatusOK, postUpdate(h, startUpdate, "s3cret").Code)
	assert.Len(t, sessions.actions, 1)
}

func TestWebhook_BadRequests(t *testing.T) {
	h, err := NewHTTPHandler(&fakeSubmitter{}, nil, "", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, postUpdate(h, "{not json", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWebhook_IgnoresUnsupportedUpdate(t *testing.T) {
	sessions := &fakeSubmitter{}
	h, err := NewHTTPHandler(sessions, nil, "", nil)
	require.NoError(t, err)

	rec := postUpdate(h, `{"update_id":8,"edited_message":{"message_id":1}}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ignored", decodeResponse(t, rec).Message)
	assert.Empty(t, sessions.actions)
}

func TestWebhook_AnswersCallbacks(t *testing.T) {
	acker := &fakeAcker{}
	h, err := NewHTTPHandler(&fakeSubmitter{}, acker, "", nil)
	require.NoError(t, err)

	postUpdate(h, `{"update_id":9,"callback_query":{"id":"cb-1","from":{"id":5},"data":"next","message":{"message_id":3,"chat":{"id":5}}}}`, "")
	assert.Equal(t, []string{"cb-1"}, acker.ids)
}

func TestWebhook_BusySessionAllowsRedelivery(t *testing.T) {
	sessions := &fakeSubmitter{err: service.ErrSessionBusy}
	h, err := NewHTTPHandler(sessions, nil, "", nil)
	require.NoError(t, err)

	rec := postUpdate(h, startUpdate, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	sessions.err = nil
	rec = postUpdate(h, startUpdate, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, sessions.actions, 1)
}

func TestWebhook_ClosedManager(t *testing.T) {
	h, err := NewHTTPHandler(&fakeSubmitter{err: service.ErrManagerClosed}, nil, "", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, postUpdate(h, startUpdate, "").Code)
}

func TestHealthCheck(t *testing.T) {
	healthy := pingerFunc(func(context.Context) error { return nil })
	broken := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	h, err := NewHTTPHandler(&fakeSubmitter{}, nil, "", map[string]Pinger{"catalog": healthy})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h, err = NewHTTPHandler(&fakeSubmitter{}, nil, "", map[string]Pinger{"catalog": healthy, "ledger": broken})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
