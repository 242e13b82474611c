// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/litreview-study/internal/httputil"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const (
	semanticFields = "title,authors,year,venue,abstract,externalIds,url,journal"
	unknownAuthor  = "Unknown"
)

// SemanticScholar queries the Semantic Scholar Graph API.
type SemanticScholar struct {
	Client *http.Client
	// APIKey is optional; without it the public rate limit applies.
	APIKey    string
	UserAgent string
	Retries   int
	Logger    *slog.Logger
}

// Name returns the backend identifier.
func (b *SemanticScholar) Name() string { return types.BackendSemanticScholar }

// Search runs one query and returns up to limit normalized papers.
func (b *SemanticScholar) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	q, limit, err := normalizeQuery(query, limit)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"query":  {q},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, b.Retries, b.Logger)
	if err != nil {
		err = fmt.Errorf("Semantic Scholar request: %w", err)
		logFailure(b.Logger, b.Name(), q, err)
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "Semantic Scholar", b.APIKey != ""); err != nil {
		logFailure(b.Logger, b.Name(), q, err)
		return nil, err
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	papers := make([]types.Paper, 0, len(sr.Data))
	for _, item := range sr.Data {
		papers = append(papers, item.toPaper())
	}
	return papers, nil
}

func (sp semanticPaper) toPaper() types.Paper {
	p := types.Paper{
		ID:       types.PaperID(sp.PaperID),
		Title:    sp.Title,
		Abstract: sp.Abstract,
		DOI:      sp.ExternalIDs.DOI,
		URL:      sp.URL,
		Authors:  make([]string, 0, len(sp.Authors)),
	}
	if sp.Year != nil {
		p.Year = *sp.Year
	}
	for _, a := range sp.Authors {
		name := a.Name
		if name == "" {
			name = unknownAuthor
		}
		p.Authors = append(p.Authors, name)
	}

	// Venue wins over the structured journal name.
	p.Journal = sp.Venue
	if sp.Journal != nil {
		if p.Journal == "" {
			p.Journal = sp.Journal.Name
		}
		p.Volume = sp.Journal.Volume
		p.Pages = sp.Journal.Pages
	}
	return normalize(p)
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID     string              `json:"paperId"`
	Title       string              `json:"title"`
	Abstract    string              `json:"abstract"`
	Year        *int                `json:"year"`
	Venue       string              `json:"venue"`
	URL         string              `json:"url"`
	Journal     *semanticJournal    `json:"journal"`
	Authors     []semanticAuthor    `json:"authors"`
	ExternalIDs semanticExternalIDs `json:"externalIds"`
}

type semanticJournal struct {
	Name   string           `json:"name"`
	Volume types.FlexString `json:"volume"`
	Pages  types.FlexString `json:"pages"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
