// Package telegram adapts the Telegram Bot API to the messenger port and
// converts webhook updates into session actions.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

const DefaultAPIURL = "https://api.telegram.org"

var ErrAPI = errors.New("telegram api error")

type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewClient(token, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

func markup(kb domain.Keyboard) *replyMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]inlineButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]inlineButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, inlineButton{Text: b.Text, CallbackData: b.Data})
		}
		rows = append(rows, buttons)
	}
	return &replyMarkup{InlineKeyboard: rows}
}

func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	var res apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("failed to decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !res.OK {
		return fmt.Errorf("%w: %s: %d %s", ErrAPI, method, res.ErrorCode, res.Description)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo, caption string, kb domain.Keyboard) (int64, error) {
	var msg Message
	err := c.call(ctx, "sendPhoto", struct {
		ChatID      int64        `json:"chat_id"`
		Photo       string       `json:"photo"`
		Caption     string       `json:"caption,omitempty"`
		ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
	}{chatID, photo, caption, markup(kb)}, &msg)
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

func (c *Client) EditMessageMedia(ctx context.Context, chatID, messageID int64, photo, caption string) error {
	type inputMediaPhoto struct {
		Type    string `json:"type"`
		Media   string `json:"media"`
		Caption string `json:"caption,omitempty"`
	}
	return c.call(ctx, "editMessageMedia", struct {
		ChatID    int64           `json:"chat_id"`
		MessageID int64           `json:"message_id"`
		Media     inputMediaPhoto `json:"media"`
	}{chatID, messageID, inputMediaPhoto{Type: "photo", Media: photo, Caption: caption}}, nil)
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string, kb domain.Keyboard) error {
	return c.call(ctx, "sendMessage", struct {
		ChatID      int64        `json:"chat_id"`
		Text        string       `json:"text"`
		ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
	}{chatID, text, markup(kb)}, nil)
}

// AnswerCallback acknowledges a pressed button so the client stops its
// loading indicator.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", struct {
		CallbackQueryID string `json:"callback_query_id"`
	}{callbackID}, nil)
}

// SetWebhook registers url as the update endpoint. Pending updates are
// dropped, so a restarted bot does not replay stale button presses.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	return c.call(ctx, "setWebhook", struct {
		URL                string `json:"url"`
		SecretToken        string `json:"secret_token,omitempty"`
		DropPendingUpdates bool   `json:"drop_pending_updates"`
	}{url, secret, true}, nil)
}
