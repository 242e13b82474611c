// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/litreview-study/internal/httputil"
	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/pkg/types"
)

const defaultGeminiModel = "gemini-2.0-flash"

// geminiBaseURL overrides the SDK endpoint when non-empty. Tests point it at
// an httptest server.
var geminiBaseURL = ""

// Gemini completes prompts with the Gemini API through the genai SDK.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int32
	logger    *slog.Logger
}

// NewGemini builds a Gemini gateway. It fails with a KindConfig error when
// no API key is set.
func NewGemini(ctx context.Context, cfg types.AIConfig, logger *slog.Logger) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &Error{Kind: KindConfig, Provider: types.ProviderGemini, Err: ErrNoAPIKey}
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httputil.NewClient(types.HTTPConfig{Timeout: cfg.Timeout}),
	}
	if geminiBaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: geminiBaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &Error{Kind: KindConfig, Provider: types.ProviderGemini, Err: err}
	}

	return &Gemini{
		client:    client,
		model:     model,
		maxTokens: int32(cfg.MaxTokens),
		logger:    logging.OrDiscard(logger),
	}, nil
}

// Complete sends one generateContent request.
func (g *Gemini) Complete(ctx context.Context, prompt, background string) (string, error) {
	var gc *genai.GenerateContentConfig
	if g.maxTokens > 0 {
		gc = &genai.GenerateContentConfig{MaxOutputTokens: g.maxTokens}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(composePrompt(prompt, background)), gc)
	if err != nil {
		g.logger.Debug("gemini call failed", slog.String("model", g.model), slog.Any("error", err))
		if code := apiStatus(err); code != 0 {
			return "", &Error{Kind: KindStatus, Provider: types.ProviderGemini, Status: code, Err: err}
		}
		return "", &Error{Kind: KindTransport, Provider: types.ProviderGemini, Err: err}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: KindEmpty, Provider: types.ProviderGemini, Err: errors.New("no text in response")}
	}
	return text, nil
}

// apiStatus returns the HTTP status carried by a genai.APIError, or 0.
func apiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}
