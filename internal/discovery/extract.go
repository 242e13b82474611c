// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/litreview-study/internal/llm"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// fallbackChunk is the word count of the single keyword set used when the
// model output cannot be parsed.
const fallbackChunk = 4

// ExtractionMode tags which path produced the keyword sets.
type ExtractionMode string

const (
	ModeParsed   ExtractionMode = "parsed"
	ModeFallback ExtractionMode = "fallback"
)

// Extraction is the stage 1 result. Both modes carry usable keyword sets;
// Reason explains a fallback.
type Extraction struct {
	Mode        ExtractionMode     `json:"mode" yaml:"mode"`
	KeywordSets []types.KeywordSet `json:"keyword_sets" yaml:"keyword_sets"`
	Reason      string             `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Parsed returns a parsed extraction.
func Parsed(sets []types.KeywordSet) Extraction {
	return Extraction{Mode: ModeParsed, KeywordSets: sets}
}

// Fallback returns a heuristic extraction with the reason parsing failed.
func Fallback(sets []types.KeywordSet, reason string) Extraction {
	return Extraction{Mode: ModeFallback, KeywordSets: sets, Reason: reason}
}

// IsFallback reports whether the heuristic path was taken.
func (e Extraction) IsFallback() bool { return e.Mode == ModeFallback }

// ExtractKeywords asks the model for keyword-set variants of description.
// It never fails: any model error or malformed output yields a fallback
// extraction built from the description's words.
func ExtractKeywords(ctx context.Context, gw llm.Gateway, description string) Extraction {
	prompt, err := renderExtractionPrompt(description)
	if err != nil {
		return Fallback(FallbackKeywordSets(description), "rendering prompt: "+err.Error())
	}
	resp, err := gw.Complete(ctx, prompt, "")
	if err != nil {
		return Fallback(FallbackKeywordSets(description), "model error: "+err.Error())
	}
	sets, err := ParseKeywordSets(resp)
	if err != nil {
		return Fallback(FallbackKeywordSets(description), err.Error())
	}
	return Parsed(sets)
}

// ParseKeywordSets parses a model reply as a JSON list of lists of strings.
// A code fence and a leading "json" language tag are stripped first. Blank
// keywords and empty sets are dropped; a reply with no usable set is an
// error.
func ParseKeywordSets(text string) ([]types.KeywordSet, error) {
	text = stripFence(text)

	var raw [][]string
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("malformed keyword sets: %w", err)
	}

	var sets []types.KeywordSet
	for _, r := range raw {
		var set types.KeywordSet
		for _, kw := range r {
			if kw = strings.TrimSpace(kw); kw != "" {
				set = append(set, kw)
			}
		}
		if len(set) > 0 {
			sets = append(sets, set)
		}
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no keyword sets in model output")
	}
	return sets, nil
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if _, rest, ok := strings.Cut(text, "\n"); ok {
			text = rest
		} else {
			text = text[3:]
		}
	}
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if len(text) >= 4 && strings.EqualFold(text[:4], "json") {
		text = strings.TrimSpace(text[4:])
	}
	return text
}

// FallbackKeywordSets chunks the description's words into groups of up to
// four and returns the first chunk as the only keyword set. A description
// with no words is used verbatim.
func FallbackKeywordSets(description string) []types.KeywordSet {
	words := strings.Fields(description)
	if len(words) == 0 {
		return []types.KeywordSet{{description}}
	}
	n := min(fallbackChunk, len(words))
	return []types.KeywordSet{types.KeywordSet(words[:n])}
}
