// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import "github.com/pdiddy/litreview-study/pkg/types"

// Deduplicate drops papers whose id or normalized title was already seen,
// keeping the first occurrence and preserving order. An empty id or title
// is never treated as a match.
func Deduplicate(papers []types.Paper) []types.Paper {
	seenIDs := make(map[types.PaperID]bool)
	seenTitles := make(map[string]bool)
	unique := make([]types.Paper, 0, len(papers))

	for _, p := range papers {
		title := p.NormalizedTitle()
		if p.ID != "" && seenIDs[p.ID] {
			continue
		}
		if title != "" && seenTitles[title] {
			continue
		}
		if p.ID != "" {
			seenIDs[p.ID] = true
		}
		if title != "" {
			seenTitles[title] = true
		}
		unique = append(unique, p)
	}
	return unique
}
