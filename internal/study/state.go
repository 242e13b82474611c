// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package study

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview-study/pkg/types"
)

// ErrNoSession is returned when no session has been started.
var ErrNoSession = errors.New("no active session; run 'litreview session start' first")

// State is the part of a session that survives between commands. API keys
// are never part of it.
type State struct {
	Context types.SessionContext `yaml:"context"`

	ParticipantInfo     string `yaml:"participant_info,omitempty"`
	LitReviewExperience int    `yaml:"lit_review_experience"`
	AIExperience        int    `yaml:"ai_experience"`

	TaskSample string `yaml:"task_sample,omitempty"`

	// AIMode is the active mode; UsedAIMode stays set once AI mode was entered.
	AIMode     bool `yaml:"ai_mode"`
	UsedAIMode bool `yaml:"used_ai_mode"`

	StartedAt time.Time  `yaml:"started_at"`
	EndedAt   *time.Time `yaml:"ended_at,omitempty"`

	// LastQuery is the previous ad-hoc search, compared to detect refinements.
	LastQuery string `yaml:"last_query,omitempty"`
}

// Ended reports whether the task was submitted.
func (s *State) Ended() bool { return s.EndedAt != nil }

// LoadState reads the session file at path.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}
	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", path, err)
	}
	if !st.Context.Identified() {
		return nil, ErrNoSession
	}
	return &st, nil
}

// SaveState writes st to path, creating the directory.
func SaveState(path string, st *State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// ClearState removes the session file. The participant's event log is
// left untouched. A missing file is not an error.
func ClearState(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}
