// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/litreview-study/internal/httputil"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// openAlexMaxPage is the largest per_page the API accepts.
const openAlexMaxPage = 200

// OpenAlex queries the OpenAlex Works API. It needs no key.
type OpenAlex struct {
	Client *http.Client
	// Email is sent as mailto for polite pool access.
	Email     string
	UserAgent string
	Retries   int
	Logger    *slog.Logger
}

// Name returns the backend identifier.
func (b *OpenAlex) Name() string { return types.BackendOpenAlex }

// Search runs one query and returns up to limit normalized papers.
func (b *OpenAlex) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	q, limit, err := normalizeQuery(query, limit)
	if err != nil {
		return nil, err
	}
	if limit > openAlexMaxPage {
		limit = openAlexMaxPage
	}

	params := url.Values{
		"search":   {q},
		"per_page": {strconv.Itoa(limit)},
		"page":     {"1"},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, b.Retries, b.Logger)
	if err != nil {
		err = fmt.Errorf("OpenAlex request: %w", err)
		logFailure(b.Logger, b.Name(), q, err)
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "OpenAlex", b.Email != ""); err != nil {
		logFailure(b.Logger, b.Name(), q, err)
		return nil, err
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	papers := make([]types.Paper, 0, len(oar.Results))
	for _, work := range oar.Results {
		papers = append(papers, work.toPaper())
	}
	return papers, nil
}

func (w openAlexWork) toPaper() types.Paper {
	p := types.Paper{
		ID:       types.PaperID(strings.TrimPrefix(w.ID, "https://openalex.org/")),
		Title:    w.Title,
		Year:     w.PublicationYear,
		DOI:      strings.TrimPrefix(w.DOI, "https://doi.org/"),
		Abstract: reconstructAbstract(w.AbstractInvertedIndex),
		URL:      w.ID,
		Volume:   types.FlexString(w.Biblio.Volume),
		Issue:    types.FlexString(w.Biblio.Issue),
		Authors:  make([]string, 0, len(w.Authorships)),
	}
	if w.Biblio.FirstPage != "" {
		p.Pages = types.FlexString(w.Biblio.FirstPage)
		if w.Biblio.LastPage != "" && w.Biblio.LastPage != w.Biblio.FirstPage {
			p.Pages = types.FlexString(w.Biblio.FirstPage + "-" + w.Biblio.LastPage)
		}
	}
	if w.PrimaryLocation.Source != nil {
		p.Journal = w.PrimaryLocation.Source.DisplayName
	}
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			p.Authors = append(p.Authors, a.Author.DisplayName)
		}
	}
	for _, c := range w.Concepts {
		if c.Level <= 1 && c.DisplayName != "" {
			p.Keywords = append(p.Keywords, c.DisplayName)
		}
	}
	return normalize(p)
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The index maps each word to the positions it occupies.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
	Biblio                openAlexBiblio       `json:"biblio"`
	Concepts              []openAlexConcept    `json:"concepts"`
}

type openAlexAuthorship struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexLocation struct {
	Source *struct {
		DisplayName string `json:"display_name"`
	} `json:"source"`
}

type openAlexBiblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

type openAlexConcept struct {
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
}
