// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the literature review study:
// interaction events and session context, papers, keyword sets, derived
// metrics, and per-component configuration.
package types

import "strings"

// KeywordSet is one search query variant produced by keyword extraction.
// Each set is consumed by exactly one search call.
type KeywordSet []string

// Query joins the keywords with spaces.
func (k KeywordSet) Query() string {
	return strings.Join(k, " ")
}

// IsEmpty reports whether the set carries no non-blank keyword.
func (k KeywordSet) IsEmpty() bool {
	return strings.TrimSpace(k.Query()) == ""
}
