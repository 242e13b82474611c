// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdiddy/litreview-study/internal/httputil"
	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// claudeAPIURL is the Claude Messages API endpoint. Package-level var for
// test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const (
	defaultClaudeModel     = "claude-sonnet-4-5"
	defaultClaudeMaxTokens = 1024
	anthropicVersion       = "2023-06-01"
)

// Claude completes prompts with the Claude Messages API over plain HTTP.
type Claude struct {
	APIKey    string
	Model     string
	MaxTokens int
	Client    *http.Client
	Logger    *slog.Logger
}

// NewClaude builds a Claude gateway. It fails with a KindConfig error when
// no API key is set.
func NewClaude(cfg types.AIConfig, logger *slog.Logger) (*Claude, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &Error{Kind: KindConfig, Provider: types.ProviderClaude, Err: ErrNoAPIKey}
	}
	return &Claude{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Client:    httputil.NewClient(types.HTTPConfig{Timeout: cfg.Timeout}),
		Logger:    logger,
	}, nil
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends one Messages API request and joins the text blocks of the
// reply.
func (c *Claude) Complete(ctx context.Context, prompt, background string) (string, error) {
	model := c.Model
	if model == "" || strings.HasPrefix(model, "gemini") {
		model = defaultClaudeModel
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	body, err := json.Marshal(claudeRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: composePrompt(prompt, background)}},
	})
	if err != nil {
		return "", c.fail(KindTransport, 0, fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", c.fail(KindTransport, 0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", c.fail(KindTransport, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", c.fail(KindStatus, resp.StatusCode, errors.New(strings.TrimSpace(string(msg))))
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", c.fail(KindTransport, 0, fmt.Errorf("decoding response: %w", err))
	}

	var parts []string
	for _, block := range cr.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", c.fail(KindEmpty, 0, errors.New("no text content in response"))
	}
	return strings.Join(parts, ""), nil
}

func (c *Claude) fail(kind Kind, status int, err error) *Error {
	logging.OrDiscard(c.Logger).Debug("claude call failed",
		slog.String("kind", kind.String()), slog.Int("status", status), slog.Any("error", err))
	return &Error{Kind: kind, Provider: types.ProviderClaude, Status: status, Err: err}
}
