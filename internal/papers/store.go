// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package papers persists the participant's curated paper collection as a
// JSON file of the form {"references": [...]}. Every change rewrites the
// whole collection.
package papers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/pkg/types"
)

var (
	// ErrDuplicate is returned by Add when the collection already holds a
	// paper with the same title.
	ErrDuplicate = errors.New("already in collection")
	// ErrNotFound is returned by Remove and Get for an unknown id.
	ErrNotFound = errors.New("paper not found")
)

// file is the on-disk shape.
type file struct {
	References []types.Paper `json:"references"`
}

// Store reads and writes the collection file.
type Store struct {
	path   string
	logger *slog.Logger
}

// New returns a store for cfg.Path.
func New(cfg types.PaperStoreConfig, logger *slog.Logger) *Store {
	return &Store{path: cfg.Path, logger: logging.OrDiscard(logger)}
}

// Path returns the collection file path.
func (s *Store) Path() string { return s.path }

// Load returns the collection. A missing file is an empty collection.
func (s *Store) Load() ([]types.Paper, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []types.Paper{}, nil
		}
		return nil, fmt.Errorf("reading paper store: %w", err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing paper store %s: %w", s.path, err)
	}
	if f.References == nil {
		f.References = []types.Paper{}
	}
	return f.References, nil
}

// Save overwrites the collection. The file is replaced atomically through a
// temporary file in the same directory.
func (s *Store) Save(papers []types.Paper) error {
	if papers == nil {
		papers = []types.Paper{}
	}
	data, err := json.MarshalIndent(file{References: papers}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding paper store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating paper store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".papers-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing paper store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing paper store: %w", err)
	}
	s.logger.Debug("paper store saved", slog.String("path", s.path), slog.Int("papers", len(papers)))
	return nil
}

// Add commits a copy of p: it assigns the next numeric id, strips the
// transient URL, and saves. A paper whose title is already in the
// collection (ignoring case) is rejected with ErrDuplicate.
func (s *Store) Add(p types.Paper) (types.Paper, error) {
	papers, err := s.Load()
	if err != nil {
		return types.Paper{}, err
	}
	if Contains(papers, p.Title) {
		return types.Paper{}, fmt.Errorf("%q: %w", p.Title, ErrDuplicate)
	}

	p.ID = types.PaperID(strconv.Itoa(NextID(papers)))
	p.URL = ""
	if p.Authors == nil {
		p.Authors = []string{}
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}

	papers = append(papers, p)
	if err := s.Save(papers); err != nil {
		return types.Paper{}, err
	}
	return p, nil
}

// Remove deletes the paper with id and saves.
func (s *Store) Remove(id types.PaperID) (types.Paper, error) {
	papers, err := s.Load()
	if err != nil {
		return types.Paper{}, err
	}
	for i, p := range papers {
		if p.ID == id {
			rest := append(papers[:i:i], papers[i+1:]...)
			if err := s.Save(rest); err != nil {
				return types.Paper{}, err
			}
			return p, nil
		}
	}
	return types.Paper{}, fmt.Errorf("id %s: %w", id, ErrNotFound)
}

// Get returns the paper with id.
func (s *Store) Get(id types.PaperID) (types.Paper, error) {
	papers, err := s.Load()
	if err != nil {
		return types.Paper{}, err
	}
	for _, p := range papers {
		if p.ID == id {
			return p, nil
		}
	}
	return types.Paper{}, fmt.Errorf("id %s: %w", id, ErrNotFound)
}

// NextID returns one more than the largest numeric id in papers, or 1.
func NextID(papers []types.Paper) int {
	highest := 0
	for _, p := range papers {
		if n, ok := p.ID.IntID(); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}

// Contains reports whether papers holds title, ignoring case.
func Contains(papers []types.Paper, title string) bool {
	probe := types.Paper{Title: title}.NormalizedTitle()
	for _, p := range papers {
		if p.NormalizedTitle() == probe {
			return true
		}
	}
	return false
}
