// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStrings(t *testing.T) {
	tests := []struct {
		level, format string
		want          Config
	}{
		{"debug", "json", Config{Level: slog.LevelDebug, Format: "json"}},
		{"WARN", "text", Config{Level: slog.LevelWarn, Format: "text"}},
		{"error", "", Config{Level: slog.LevelError, Format: "text"}},
		{"bogus", "yaml", Config{Level: slog.LevelInfo, Format: "text"}},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, FromStrings(tt.level, tt.format))
		})
	}
}

func TestNewJSONWritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Config{Level: slog.LevelInfo, Format: "json"})

	log.Debug("hidden")
	log.Info("search finished", slog.Int("results", 7))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "search finished", rec["msg"])
	assert.EqualValues(t, 7, rec["results"])
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	l := slog.Default()
	assert.Same(t, l, OrDiscard(l))
}
