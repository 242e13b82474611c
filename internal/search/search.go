// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries academic search services and normalizes their
// results into the Paper shape.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdiddy/litreview-study/internal/httputil"
	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// DefaultLimit is the result count requested when the caller passes none.
const DefaultLimit = 10

// ErrEmptyQuery is returned when the query has no searchable terms.
var ErrEmptyQuery = errors.New("search query is empty")

// Gateway searches one academic service. Implementations are stateless
// apart from their credentials and safe for concurrent use.
type Gateway interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.Paper, error)
}

// RateLimitError reports an HTTP 429 from a search service. It is kept apart
// from other failures so callers can tell the user to supply a credential
// rather than retry blindly.
type RateLimitError struct {
	Backend   string
	HasAPIKey bool
}

func (e *RateLimitError) Error() string {
	if e.HasAPIKey {
		return fmt.Sprintf("%s rate limit reached; wait a moment before searching again", e.Backend)
	}
	return fmt.Sprintf("%s rate limit reached; configure an API key for higher limits", e.Backend)
}

// StatusError reports a non-200, non-429 response.
type StatusError struct {
	Backend string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Backend, e.Code)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Backend, e.Code, e.Body)
}

// IsRateLimited reports whether err carries a RateLimitError.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// New returns the gateway selected by cfg.Backend.
func New(cfg types.SearchConfig, logger *slog.Logger) (Gateway, error) {
	client := httputil.NewClient(cfg.HTTPConfig)
	switch cfg.Backend {
	case "", types.BackendSemanticScholar:
		return &SemanticScholar{
			Client:    client,
			APIKey:    cfg.SemanticScholarAPIKey,
			UserAgent: cfg.UserAgent,
			Retries:   cfg.RateLimitRetries,
			Logger:    logger,
		}, nil
	case types.BackendOpenAlex:
		return &OpenAlex{
			Client:    client,
			Email:     cfg.OpenAlexEmail,
			UserAgent: cfg.UserAgent,
			Retries:   cfg.RateLimitRetries,
			Logger:    logger,
		}, nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Backend)
	}
}

// normalizeQuery trims the query and applies the default limit.
func normalizeQuery(query string, limit int) (string, int, error) {
	q := strings.Join(strings.Fields(query), " ")
	if q == "" {
		return "", 0, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return q, limit, nil
}

// normalize fills the sentinel values for fields the service left empty.
// A missing title stays empty so it never acts as a duplicate key.
func normalize(p types.Paper) types.Paper {
	if strings.TrimSpace(p.Journal) == "" {
		p.Journal = types.UnknownVenue
	}
	if strings.TrimSpace(p.Abstract) == "" {
		p.Abstract = types.NoAbstract
	}
	if p.Authors == nil {
		p.Authors = []string{}
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	return p
}

// checkStatus maps a non-200 response to a typed error. The body is drained
// up to a short prefix for the message.
func checkStatus(resp *http.Response, backend string, hasKey bool) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return &RateLimitError{Backend: backend, HasAPIKey: hasKey}
	default:
		buf := make([]byte, 256)
		n, _ := resp.Body.Read(buf)
		return &StatusError{Backend: backend, Code: resp.StatusCode, Body: strings.TrimSpace(string(buf[:n]))}
	}
}

func logFailure(logger *slog.Logger, backend, query string, err error) {
	logging.OrDiscard(logger).Warn("search failed",
		slog.String("backend", backend),
		slog.String("query", query),
		slog.Any("error", err))
}

// DisplayName returns the human-readable name of a backend identifier.
func DisplayName(backend string) string {
	switch backend {
	case types.BackendSemanticScholar:
		return "Semantic Scholar"
	case types.BackendOpenAlex:
		return "OpenAlex"
	default:
		return backend
	}
}
