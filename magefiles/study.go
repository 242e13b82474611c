package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Study groups targets that operate on recorded study data.
type Study mg.Namespace

func litreview(args ...string) (string, error) {
	return sh.Output(filepath.Join(binDir, binName), args...)
}

// Export writes every participant's event log as CSV into reports/.
func (Study) Export() error {
	mg.Deps(Build)
	out, err := litreview("log", "list")
	if err != nil {
		return err
	}
	if err := os.MkdirAll("reports", 0o755); err != nil {
		return err
	}
	for _, id := range strings.Fields(out) {
		path := filepath.Join("reports", id+".csv")
		if _, err := litreview("log", "export", id, "--format", "csv", "-o", path); err != nil {
			return fmt.Errorf("exporting %s: %w", id, err)
		}
		fmt.Println("  ", path)
	}
	return nil
}

// Metrics writes every participant's session report as JSON into reports/.
func (Study) Metrics() error {
	mg.Deps(Build)
	out, err := litreview("log", "list")
	if err != nil {
		return err
	}
	if err := os.MkdirAll("reports", 0o755); err != nil {
		return err
	}
	for _, id := range strings.Fields(out) {
		report, err := litreview("metrics", id, "--json")
		if err != nil {
			return fmt.Errorf("metrics for %s: %w", id, err)
		}
		path := filepath.Join("reports", id+"-metrics.json")
		if err := os.WriteFile(path, []byte(report+"\n"), 0o644); err != nil {
			return err
		}
		fmt.Println("  ", path)
	}
	return nil
}
