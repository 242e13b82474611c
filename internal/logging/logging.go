// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the structured slog logger shared by all components.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Config holds the configuration of the logger.
type Config struct {
	Level  slog.Level
	Format string
}

// FromStrings maps the config file's level and format strings to a Config.
// Unknown levels fall back to info; unknown formats to text.
func FromStrings(level, format string) Config {
	cfg := Config{Level: slog.LevelInfo, Format: "text"}

	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = slog.LevelDebug
	case "warn", "warning":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	}

	if strings.EqualFold(format, "json") {
		cfg.Format = "json"
	}
	return cfg
}

// New returns a logger writing to w. JSON format uses the standard JSON
// handler; anything else uses tint's colorized text handler.
func New(w io.Writer, cfg Config) *slog.Logger {
	if cfg.Format == "json" {
		opts := &slog.HandlerOptions{
			Level: cfg.Level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String(a.Key, a.Value.Time().UTC().Format(time.RFC3339))
				}
				return a
			},
		}
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      cfg.Level,
		TimeFormat: time.Kitchen,
	}))
}

// Discard returns a logger that drops every record. Components use it when
// the caller passes a nil logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
