// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview-study/pkg/types"
)

const semanticFixture = `{
  "total": 2, "offset": 0,
  "data": [
    {
      "paperId": "abc123",
      "title": "Attention U-Net",
      "abstract": "We propose an attention gate.",
      "year": 2018,
      "venue": "",
      "url": "https://www.semanticscholar.org/paper/abc123",
      "journal": {"name": "Medical Image Analysis", "volume": "53", "pages": "197-207"},
      "authors": [{"authorId": "1", "name": "Ozan Oktay"}, {"authorId": "2", "name": ""}],
      "externalIds": {"DOI": "10.1016/j.media.2019.01.012"}
    },
    {
      "paperId": "def456",
      "title": null,
      "abstract": null,
      "year": null,
      "venue": null,
      "url": null,
      "journal": null,
      "authors": null,
      "externalIds": {}
    }
  ]
}`

func withSemanticServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	old := semanticAPIBase
	semanticAPIBase = ts.URL
	t.Cleanup(func() {
		semanticAPIBase = old
		ts.Close()
	})
	return ts
}

func TestSemanticSearchRequest(t *testing.T) {
	var captured *http.Request
	ts := withSemanticServer(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"total":0,"offset":0,"data":[]}`)
	})

	b := &SemanticScholar{Client: ts.Client(), APIKey: "k-123", UserAgent: "LiteratureReviewDashboard/1.0"}
	papers, err := b.Search(context.Background(), "  attention   segmentation ", 7)
	require.NoError(t, err)
	assert.Empty(t, papers)

	q := captured.URL.Query()
	assert.Equal(t, "attention segmentation", q.Get("query"))
	assert.Equal(t, "7", q.Get("limit"))
	assert.Equal(t, semanticFields, q.Get("fields"))
	assert.Equal(t, "k-123", captured.Header.Get("x-api-key"))
	assert.Equal(t, "LiteratureReviewDashboard/1.0", captured.Header.Get("User-Agent"))
}

func TestSemanticSearchDefaultLimitAndNoKey(t *testing.T) {
	var captured *http.Request
	ts := withSemanticServer(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"data":[]}`)
	})

	b := &SemanticScholar{Client: ts.Client()}
	_, err := b.Search(context.Background(), "x", 0)
	require.NoError(t, err)
	assert.Equal(t, "10", captured.URL.Query().Get("limit"))
	assert.Empty(t, captured.Header.Get("x-api-key"))
}

func TestSemanticSearchNormalizesResults(t *testing.T) {
	ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, semanticFixture)
	})

	b := &SemanticScholar{Client: ts.Client()}
	papers, err := b.Search(context.Background(), "attention", 10)
	require.NoError(t, err)
	require.Len(t, papers, 2)

	first := papers[0]
	assert.Equal(t, types.PaperID("abc123"), first.ID)
	assert.Equal(t, "Attention U-Net", first.Title)
	assert.Equal(t, []string{"Ozan Oktay", "Unknown"}, first.Authors)
	assert.Equal(t, 2018, first.Year)
	assert.Equal(t, "Medical Image Analysis", first.Journal)
	assert.Equal(t, types.FlexString("53"), first.Volume)
	assert.Equal(t, "10.1016/j.media.2019.01.012", first.DOI)
	assert.Equal(t, "https://www.semanticscholar.org/paper/abc123", first.URL)
	assert.Equal(t, []string{}, first.Keywords)

	second := papers[1]
	assert.Empty(t, second.Title)
	assert.Equal(t, types.UnknownVenue, second.Journal)
	assert.Equal(t, types.NoAbstract, second.Abstract)
	assert.Zero(t, second.Year)
	assert.Equal(t, []string{}, second.Authors)
}

func TestSemanticVenueWinsOverJournal(t *testing.T) {
	sp := semanticPaper{Title: "T", Venue: "CVPR", Journal: &semanticJournal{Name: "Other"}}
	assert.Equal(t, "CVPR", sp.toPaper().Journal)
}

func TestSemanticSearchRateLimit(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantKey bool
		wantMsg string
	}{
		{"without key", "", false, "configure an API key"},
		{"with key", "secret", true, "wait a moment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			})

			b := &SemanticScholar{Client: ts.Client(), APIKey: tt.apiKey}
			_, err := b.Search(context.Background(), "attention", 10)
			require.Error(t, err)

			var rl *RateLimitError
			require.True(t, errors.As(err, &rl))
			assert.True(t, IsRateLimited(err))
			assert.Equal(t, tt.wantKey, rl.HasAPIKey)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSemanticSearchServerError(t *testing.T) {
	ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "upstream down")
	})

	b := &SemanticScholar{Client: ts.Client()}
	_, err := b.Search(context.Background(), "attention", 10)
	require.Error(t, err)
	assert.False(t, IsRateLimited(err))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestSemanticSearchMalformedJSON(t *testing.T) {
	ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{not json`)
	})

	b := &SemanticScholar{Client: ts.Client()}
	_, err := b.Search(context.Background(), "attention", 10)
	assert.ErrorContains(t, err, "parsing Semantic Scholar response")
}

func TestSearchEmptyQuery(t *testing.T) {
	for _, g := range []Gateway{&SemanticScholar{}, &OpenAlex{}} {
		_, err := g.Search(context.Background(), "   ", 10)
		assert.ErrorIs(t, err, ErrEmptyQuery, g.Name())
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := types.DefaultStudyConfig().Search

	g, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, types.BackendSemanticScholar, g.Name())

	cfg.Backend = types.BackendOpenAlex
	g, err = New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, types.BackendOpenAlex, g.Name())

	cfg.Backend = "arxiv"
	_, err = New(cfg, nil)
	assert.ErrorContains(t, err, "unknown search backend")
}
