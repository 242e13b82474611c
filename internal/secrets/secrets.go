// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text
// files, falling back to environment variables. Each file in the directory
// holds one secret: the filename is the key name and the trimmed contents are
// the value.
//
// Supported key files: gemini-api-key, anthropic-api-key,
// semantic-scholar-api-key, openalex-email.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Key file names.
const (
	KeyGemini          = "gemini-api-key"
	KeyAnthropic       = "anthropic-api-key"
	KeySemanticScholar = "semantic-scholar-api-key"
	KeyOpenAlexEmail   = "openalex-email"
)

// placeholder is the value shipped in template .env files; it counts as unset.
const placeholder = "your_api_key_here"

// envFallback maps each key file to the environment variable read when the
// file is absent.
var envFallback = map[string]string{
	KeyGemini:          "GEMINI_API_KEY",
	KeyAnthropic:       "ANTHROPIC_API_KEY",
	KeySemanticScholar: "SEMANTIC_SCHOLAR_API_KEY",
	KeyOpenAlexEmail:   "OPENALEX_EMAIL",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged at warn and skipped.
func Load(dir string, logger *slog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logging.OrDiscard(logger).Warn("could not read secret",
				slog.String("name", name), slog.Any("error", err))
			continue
		}

		if value := clean(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Credentials holds the keys the study session keeps in memory.
type Credentials struct {
	GeminiAPIKey          string
	AnthropicAPIKey       string
	SemanticScholarAPIKey string
	OpenAlexEmail         string
}

// Resolve loads credentials from dir and fills any missing key from the
// environment through getenv (os.Getenv when nil).
func Resolve(dir string, getenv func(string) string, logger *slog.Logger) (Credentials, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	files, err := Load(dir, logger)
	if err != nil {
		return Credentials{}, err
	}

	get := func(key string) string {
		if v, ok := files[key]; ok {
			return v
		}
		return clean(getenv(envFallback[key]))
	}

	return Credentials{
		GeminiAPIKey:          get(KeyGemini),
		AnthropicAPIKey:       get(KeyAnthropic),
		SemanticScholarAPIKey: get(KeySemanticScholar),
		OpenAlexEmail:         get(KeyOpenAlexEmail),
	}, nil
}

// Apply copies credentials into cfg without overwriting values already set.
// The AI key follows the configured provider.
func (c Credentials) Apply(cfg *types.StudyConfig) {
	if cfg.AI.APIKey == "" {
		switch cfg.AI.Provider {
		case types.ProviderClaude:
			cfg.AI.APIKey = c.AnthropicAPIKey
		default:
			cfg.AI.APIKey = c.GeminiAPIKey
		}
	}
	if cfg.Search.SemanticScholarAPIKey == "" {
		cfg.Search.SemanticScholarAPIKey = c.SemanticScholarAPIKey
	}
	if cfg.Search.OpenAlexEmail == "" {
		cfg.Search.OpenAlexEmail = c.OpenAlexEmail
	}
}

func clean(v string) string {
	v = strings.TrimSpace(v)
	if v == placeholder {
		return ""
	}
	return v
}
