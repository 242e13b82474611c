// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Sentinels substituted for fields the search service leaves empty.
const (
	UnknownVenue = "Unknown"
	NoAbstract   = "No abstract available."
	Untitled     = "Untitled"
)

// PaperID identifies a paper. Committed papers carry a numeric id assigned by
// the paper store; fresh search results carry the service's external id. The
// JSON form is a number when the id is numeric and a string otherwise.
type PaperID string

// IntID returns the numeric value of a store-assigned id.
func (id PaperID) IntID() (int, bool) {
	n, err := strconv.Atoi(string(id))
	if err != nil {
		return 0, false
	}
	return n, true
}

// String implements fmt.Stringer.
func (id PaperID) String() string { return string(id) }

// MarshalJSON writes canonical numeric ids as JSON numbers. Ids such as
// "007" or "+5" stay strings so they read back unchanged.
func (id PaperID) MarshalJSON() ([]byte, error) {
	if n, ok := id.IntID(); ok && strconv.Itoa(n) == string(id) {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a string, a number, or null.
func (id *PaperID) UnmarshalJSON(data []byte) error {
	s, err := decodeScalar(data)
	if err != nil {
		return fmt.Errorf("paper id: %w", err)
	}
	*id = PaperID(s)
	return nil
}

// FlexString is a bibliographic field (volume, issue, pages) that source
// files write either as a string or as a number.
type FlexString string

// UnmarshalJSON accepts a string, a number, or null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	s, err := decodeScalar(data)
	if err != nil {
		return err
	}
	*f = FlexString(s)
	return nil
}

func decodeScalar(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", fmt.Errorf("want string or number, got %s", string(data))
	}
	return n.String(), nil
}

// Paper holds bibliographic metadata for one paper, either a fresh search
// result or an entry committed to the paper store.
type Paper struct {
	// ID is the store-assigned integer id or the external search id.
	ID PaperID `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year; zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Journal is the venue or journal name.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	Volume FlexString `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue  FlexString `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages  FlexString `json:"pages,omitempty" yaml:"pages,omitempty"`

	// DOI is the bare DOI without the resolver prefix.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Keywords are topic labels; treated as a set.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// URL links to the paper's landing page. Present only on fresh search
	// results; stripped when the paper is committed.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// NormalizedTitle returns the case-folded, whitespace-trimmed title used as
// a duplicate key.
func (p Paper) NormalizedTitle() string {
	return strings.ToLower(strings.TrimSpace(p.Title))
}

// HasKeyword reports whether the paper carries kw, ignoring case.
func (p Paper) HasKeyword(kw string) bool {
	for _, k := range p.Keywords {
		if strings.EqualFold(k, kw) {
			return true
		}
	}
	return false
}

// Context renders the paper as the text block handed to the LLM.
func (p Paper) Context() string {
	abstract := p.Abstract
	if abstract == "" {
		abstract = "N/A"
	}
	return fmt.Sprintf("Title: %s\nAuthors: %s\nAbstract: %s\nKeywords: %s",
		p.Title, strings.Join(p.Authors, ", "), abstract, strings.Join(p.Keywords, ", "))
}
