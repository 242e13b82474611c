// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the gateway to the large-language-model service. Callers
// send a prompt with optional context and get completion text or a typed
// *Error.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/litreview-study/pkg/types"
)

// Gateway completes a prompt. Background, when non-empty, is prepended to the
// prompt with a blank-line separator.
type Gateway interface {
	Complete(ctx context.Context, prompt, background string) (string, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, prompt, background string) (string, error)

// Complete calls f.
func (f GatewayFunc) Complete(ctx context.Context, prompt, background string) (string, error) {
	return f(ctx, prompt, background)
}

// Kind classifies a gateway failure.
type Kind int

const (
	// KindConfig means the gateway is not usable as configured (no key,
	// unknown provider).
	KindConfig Kind = iota + 1
	// KindTransport means the request did not complete.
	KindTransport
	// KindStatus means the service answered with a non-success status.
	KindStatus
	// KindEmpty means the service answered without any text.
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Error is returned by every Gateway implementation in this package.
type Error struct {
	Kind     Kind
	Provider string
	// Status is the HTTP status for KindStatus errors.
	Status int
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " %d", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == k
}

// ErrNoAPIKey is wrapped by KindConfig errors when no credential is set.
var ErrNoAPIKey = errors.New("API key not configured")

// New returns the gateway selected by cfg.Provider.
func New(ctx context.Context, cfg types.AIConfig, logger *slog.Logger) (Gateway, error) {
	switch cfg.Provider {
	case "", types.ProviderGemini:
		return NewGemini(ctx, cfg, logger)
	case types.ProviderClaude:
		return NewClaude(cfg, logger)
	default:
		return nil, &Error{Kind: KindConfig, Provider: cfg.Provider, Err: fmt.Errorf("unknown provider %q", cfg.Provider)}
	}
}

// composePrompt prepends background to prompt with a blank-line separator.
func composePrompt(prompt, background string) string {
	if strings.TrimSpace(background) == "" {
		return prompt
	}
	return background + "\n\n" + prompt
}
