// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview-study/pkg/types"
)

// RunReport is the audit record of one Deep Research run.
type RunReport struct {
	RunID         string          `json:"run_id" yaml:"run_id"`
	ParticipantID string          `json:"participant_id,omitempty" yaml:"participant_id,omitempty"`
	Condition     types.Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
	Description   string          `json:"description" yaml:"description"`
	Backend       string          `json:"backend" yaml:"backend"`
	StartedAt     time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time       `json:"finished_at" yaml:"finished_at"`

	Extraction Extraction    `json:"extraction" yaml:"extraction"`
	Queries    []QueryResult `json:"queries" yaml:"queries"`

	Raw               int  `json:"raw" yaml:"raw"`
	DuplicatesRemoved int  `json:"duplicates_removed" yaml:"duplicates_removed"`
	Unique            int  `json:"unique" yaml:"unique"`
	Evaluated         int  `json:"evaluated" yaml:"evaluated"`
	Kept              int  `json:"kept" yaml:"kept"`
	Cancelled         bool `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`

	Verdicts []Verdict     `json:"verdicts" yaml:"verdicts"`
	Results  []types.Paper `json:"results" yaml:"results"`
}

// Summary is the one-line audit count.
func (r *RunReport) Summary() string {
	return fmt.Sprintf("raw=%d duplicates_removed=%d unique=%d kept=%d", r.Raw, r.DuplicatesRemoved, r.Unique, r.Kept)
}

// WriteYAML encodes the report to w.
func (r *RunReport) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding run report: %w", err)
	}
	return enc.Close()
}

// Save writes the report to dir/<run_id>.yaml and returns the path.
func (r *RunReport) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(dir, r.RunID+".yaml")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	if err := r.WriteYAML(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report file: %w", err)
	}
	return path, nil
}

// LoadReport reads a report written by Save.
func LoadReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run report: %w", err)
	}
	var r RunReport
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing run report %s: %w", path, err)
	}
	return &r, nil
}
