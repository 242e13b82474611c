// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package papers

import (
	"sort"
	"strings"

	"github.com/pdiddy/litreview-study/pkg/types"
)

// Criteria narrows a collection. Zero fields do not filter.
type Criteria struct {
	YearFrom int
	YearTo   int
	Journal  string
	Author   string
	// Keywords match when the paper carries any of them.
	Keywords []string
	// Text matches a substring of the title or abstract, ignoring case.
	Text string
}

// Filter returns the papers matching c, in collection order.
func Filter(papers []types.Paper, c Criteria) []types.Paper {
	out := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		if c.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (c Criteria) matches(p types.Paper) bool {
	if c.YearFrom > 0 && p.Year < c.YearFrom {
		return false
	}
	if c.YearTo > 0 && p.Year > c.YearTo {
		return false
	}
	if c.Journal != "" && !strings.EqualFold(p.Journal, c.Journal) {
		return false
	}
	if c.Author != "" && !anyContains(p.Authors, c.Author) {
		return false
	}
	if len(c.Keywords) > 0 {
		found := false
		for _, kw := range c.Keywords {
			if p.HasKeyword(kw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.Text != "" {
		q := strings.ToLower(c.Text)
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Abstract), q) {
			return false
		}
	}
	return true
}

func anyContains(values []string, sub string) bool {
	sub = strings.ToLower(sub)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), sub) {
			return true
		}
	}
	return false
}

// Count is a label with its frequency.
type Count struct {
	Label string `json:"label" yaml:"label"`
	N     int    `json:"n" yaml:"n"`
}

// Stats summarizes a collection for the analytics view.
type Stats struct {
	Papers        int     `json:"papers" yaml:"papers"`
	UniqueAuthors int     `json:"unique_authors" yaml:"unique_authors"`
	Journals      int     `json:"journals" yaml:"journals"`
	YearMin       int     `json:"year_min,omitempty" yaml:"year_min,omitempty"`
	YearMax       int     `json:"year_max,omitempty" yaml:"year_max,omitempty"`
	TopJournals   []Count `json:"top_journals" yaml:"top_journals"`
	TopKeywords   []Count `json:"top_keywords" yaml:"top_keywords"`
}

// Summarize computes Stats, keeping the top n journals and keywords.
func Summarize(papers []types.Paper, n int) Stats {
	authors := make(map[string]bool)
	journals := make(map[string]int)
	keywords := make(map[string]int)
	s := Stats{Papers: len(papers)}

	for _, p := range papers {
		for _, a := range p.Authors {
			authors[a] = true
		}
		journals[p.Journal]++
		for _, k := range p.Keywords {
			keywords[strings.ToLower(k)]++
		}
		if p.Year > 0 {
			if s.YearMin == 0 || p.Year < s.YearMin {
				s.YearMin = p.Year
			}
			if p.Year > s.YearMax {
				s.YearMax = p.Year
			}
		}
	}
	s.UniqueAuthors = len(authors)
	s.Journals = len(journals)
	s.TopJournals = top(journals, n)
	s.TopKeywords = top(keywords, n)
	return s
}

// top returns the n most frequent labels, ties broken alphabetically.
func top(m map[string]int, n int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Label: k, N: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Label < out[j].Label
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
