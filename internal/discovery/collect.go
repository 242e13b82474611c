// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/internal/search"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// QueryResult records one stage 2 search call.
type QueryResult struct {
	Keywords    types.KeywordSet `json:"keywords" yaml:"keywords"`
	Query       string           `json:"query" yaml:"query"`
	Count       int              `json:"count" yaml:"count"`
	Error       string           `json:"error,omitempty" yaml:"error,omitempty"`
	RateLimited bool             `json:"rate_limited,omitempty" yaml:"rate_limited,omitempty"`
}

// Collector runs stage 2: one search per keyword set, in order, with a
// pacing delay between calls.
type Collector struct {
	Search      search.Gateway
	PageSize    int
	PacingDelay time.Duration
	Logger      *slog.Logger
}

// Collect searches every keyword set and concatenates the results in query
// order. A failed query contributes zero results and collection continues.
// Cancellation stops before the next query and returns what was collected.
func (c *Collector) Collect(ctx context.Context, sets []types.KeywordSet) ([]types.Paper, []QueryResult, error) {
	logger := logging.OrDiscard(c.Logger)

	var all []types.Paper
	queries := make([]QueryResult, 0, len(sets))
	for i, set := range sets {
		if i > 0 && c.PacingDelay > 0 {
			select {
			case <-ctx.Done():
				return all, queries, ctx.Err()
			case <-time.After(c.PacingDelay):
			}
		}
		if err := ctx.Err(); err != nil {
			return all, queries, err
		}

		qr := QueryResult{Keywords: set, Query: set.Query()}
		papers, err := c.Search.Search(ctx, qr.Query, c.PageSize)
		if err != nil {
			qr.Error = err.Error()
			qr.RateLimited = search.IsRateLimited(err)
			logger.Warn("keyword set search failed",
				slog.Int("set", i+1),
				slog.String("query", qr.Query),
				slog.Bool("rate_limited", qr.RateLimited),
				slog.Any("error", err))
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				queries = append(queries, qr)
				return all, queries, ctx.Err()
			}
		}
		qr.Count = len(papers)
		queries = append(queries, qr)
		all = append(all, papers...)
	}
	return all, queries, nil
}
