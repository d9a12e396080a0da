// Package assistant answers free-form customer questions through the OpenAI
// chat completions API.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rl1809/catalog-bot/internal/core/domain"
	"github.com/rl1809/catalog-bot/internal/port"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"

	maxTokens      = 140
	maxCatalogRows = 50
)

var ErrNoChoices = errors.New("no choices returned from OpenAI")

const (
	questionPrompt = "You are a shop assistant for an electronics store. " +
		"Answer the customer's question about a product briefly and factually."
	requestPrompt = "You are a shop assistant for an electronics store. " +
		"Answer only from the catalog below. If nothing matches, say so.\n\nCatalog:\n"
)

type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAI implements port.Assistant. In request mode the current catalog is
// passed as context so the model answers about goods actually in stock.
type OpenAI struct {
	cfg     Config
	catalog port.CatalogStore
}

func New(cfg Config, catalog port.CatalogStore) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &OpenAI{cfg: cfg, catalog: catalog}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (o *OpenAI) Answer(ctx context.Context, question, mode string) (string, error) {
	system := questionPrompt
	if mode == domain.AssistantModeRequest {
		catalog, err := o.catalogContext(ctx)
		if err != nil {
			return "", err
		}
		system = requestPrompt + catalog
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model": o.cfg.Model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: question},
		},
		"temperature": 0,
		"max_tokens":  maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", ErrNoChoices
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func (o *OpenAI) catalogContext(ctx context.Context) (string, error) {
	if o.catalog == nil {
		return "(empty)", nil
	}
	goods, err := o.catalog.Query(ctx, domain.GoodsFilter{})
	if err != nil {
		return "", fmt.Errorf("load catalog: %w", err)
	}
	if len(goods) == 0 {
		return "(empty)", nil
	}

	var b strings.Builder
	for i, g := range goods {
		if i == maxCatalogRows {
			fmt.Fprintf(&b, "... and %d more\n", len(goods)-maxCatalogRows)
			break
		}
		fmt.Fprintf(&b, "%s | %s | %d | %s\n", g.CategoryID, g.Name, g.Price, g.Characteristics)
	}
	return b.String(), nil
}
