// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package papers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview-study/pkg/types"
)

const seedJSON = `{
  "references": [
    {"id": 1, "title": "Deep Residual Learning", "authors": ["Kaiming He"], "year": 2016,
     "journal": "CVPR", "volume": 1, "pages": "770-778", "abstract": "Residual nets.", "keywords": ["cnn", "vision"]},
    {"id": 4, "title": "BERT", "authors": ["Jacob Devlin"], "year": 2019,
     "journal": "NAACL", "issue": null, "abstract": "", "keywords": ["nlp", "transformers"]}
  ]
}`

func newStore(t *testing.T, seed string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "bib.json")
	if seed != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))
	}
	return New(types.PaperStoreConfig{Path: path}, nil)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	got, err := newStore(t, "").Load()
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestLoadMixedScalarTypes(t *testing.T) {
	got, err := newStore(t, seedJSON).Load()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, types.PaperID("1"), got[0].ID)
	assert.Equal(t, types.FlexString("1"), got[0].Volume)
	assert.Equal(t, types.FlexString(""), got[1].Issue)
}

func TestLoadMalformed(t *testing.T) {
	_, err := newStore(t, "{").Load()
	assert.ErrorContains(t, err, "parsing paper store")
}

func TestAddAssignsNextIDAndStripsURL(t *testing.T) {
	s := newStore(t, seedJSON)

	added, err := s.Add(types.Paper{
		ID:    "external-abc",
		Title: "Attention Is All You Need",
		URL:   "https://www.semanticscholar.org/paper/abc",
	})
	require.NoError(t, err)
	assert.Equal(t, types.PaperID("5"), added.ID)
	assert.Empty(t, added.URL)

	all, err := s.Load()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Attention Is All You Need", all[2].Title)
	assert.Empty(t, all[2].URL)

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id": 5`)
	assert.NotContains(t, string(raw), "semanticscholar")
}

func TestAddRejectsDuplicateTitle(t *testing.T) {
	s := newStore(t, seedJSON)
	_, err := s.Add(types.Paper{Title: "  bert "})
	assert.ErrorIs(t, err, ErrDuplicate)

	all, _ := s.Load()
	assert.Len(t, all, 2)
}

func TestAddToEmptyStore(t *testing.T) {
	s := newStore(t, "")
	added, err := s.Add(types.Paper{Title: "First"})
	require.NoError(t, err)
	assert.Equal(t, types.PaperID("1"), added.ID)
	assert.Equal(t, []string{}, added.Authors)
}

func TestRemove(t *testing.T) {
	s := newStore(t, seedJSON)

	removed, err := s.Remove("1")
	require.NoError(t, err)
	assert.Equal(t, "Deep Residual Learning", removed.Title)

	all, err := s.Load()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "BERT", all[0].Title)

	_, err = s.Remove("1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet(t *testing.T) {
	s := newStore(t, seedJSON)
	p, err := s.Get("4")
	require.NoError(t, err)
	assert.Equal(t, "BERT", p.Title)

	_, err = s.Get("99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newStore(t, "")
	require.NoError(t, s.Save(nil))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bib.json", entries[0].Name())

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"references": []}`, string(raw))
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, NextID(nil))
	assert.Equal(t, 8, NextID([]types.Paper{{ID: "3"}, {ID: "7"}, {ID: "xyz"}}))
}

func TestFilter(t *testing.T) {
	all, err := newStore(t, seedJSON).Load()
	require.NoError(t, err)

	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"no criteria", Criteria{}, []string{"Deep Residual Learning", "BERT"}},
		{"year range", Criteria{YearFrom: 2017}, []string{"BERT"}},
		{"year upper", Criteria{YearTo: 2016}, []string{"Deep Residual Learning"}},
		{"journal", Criteria{Journal: "cvpr"}, []string{"Deep Residual Learning"}},
		{"author substring", Criteria{Author: "devl"}, []string{"BERT"}},
		{"any keyword", Criteria{Keywords: []string{"NLP", "audio"}}, []string{"BERT"}},
		{"text in abstract", Criteria{Text: "residual"}, []string{"Deep Residual Learning"}},
		{"no match", Criteria{Text: "quantum"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			titles := []string{}
			for _, p := range Filter(all, tt.c) {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestSummarize(t *testing.T) {
	ps := []types.Paper{
		{Authors: []string{"A", "B"}, Journal: "CVPR", Year: 2018, Keywords: []string{"Vision", "cnn"}},
		{Authors: []string{"B"}, Journal: "CVPR", Year: 2021, Keywords: []string{"vision"}},
		{Authors: []string{"C"}, Journal: "NAACL", Keywords: []string{"nlp"}},
	}
	s := Summarize(ps, 2)
	assert.Equal(t, 3, s.Papers)
	assert.Equal(t, 3, s.UniqueAuthors)
	assert.Equal(t, 2, s.Journals)
	assert.Equal(t, 2018, s.YearMin)
	assert.Equal(t, 2021, s.YearMax)
	assert.Equal(t, []Count{{"CVPR", 2}, {"NAACL", 1}}, s.TopJournals)
	assert.Equal(t, []Count{{"vision", 2}, {"cnn", 1}}, s.TopKeywords)
}
