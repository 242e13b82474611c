// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/litreview-study/internal/llm"
	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// EvalErrorVerdict is recorded when the relevance call fails and the paper
// is kept.
const EvalErrorVerdict = "KEPT (error during evaluation)"

// Verdict is the stage 4 judgment for one paper.
type Verdict struct {
	PaperID   types.PaperID `json:"paper_id" yaml:"paper_id"`
	Title     string        `json:"title" yaml:"title"`
	Keep      bool          `json:"keep" yaml:"keep"`
	Text      string        `json:"text" yaml:"text"`
	EvalError bool          `json:"eval_error,omitempty" yaml:"eval_error,omitempty"`
	Evaluated bool          `json:"evaluated" yaml:"evaluated"`
}

// IsRelevant reports whether a verdict line keeps its paper: it must start
// with RELEVANT and not with NOT_RELEVANT, ignoring case.
func IsRelevant(verdict string) bool {
	v := strings.ToUpper(strings.TrimSpace(verdict))
	return strings.HasPrefix(v, "RELEVANT") && !strings.HasPrefix(v, "NOT_RELEVANT")
}

// Filter runs stage 4.
type Filter struct {
	LLM     llm.Gateway
	Workers int
	Logger  *slog.Logger
}

// Judge evaluates each paper against description and returns one verdict per
// paper in input order. Evaluation errors keep the paper. On cancellation,
// papers not yet evaluated get a verdict with Evaluated false and Keep
// false, and ctx.Err() is returned alongside the partial verdicts.
func (f *Filter) Judge(ctx context.Context, description string, papers []types.Paper, sink ProgressSink) ([]Verdict, error) {
	logger := logging.OrDiscard(f.Logger)
	if sink == nil {
		sink = NopSink{}
	}

	verdicts := make([]Verdict, len(papers))
	for i, p := range papers {
		verdicts[i] = Verdict{PaperID: p.ID, Title: p.Title}
	}

	var (
		mu   sync.Mutex
		done int
	)
	report := func(i int) {
		mu.Lock()
		defer mu.Unlock()
		v := verdicts[i]
		icon := "[-]"
		if v.Keep {
			icon = "[+]"
		}
		title := v.Title
		if title == "" {
			title = types.Untitled
		}
		sink.Report(Progress{
			Stage:   StageFilter,
			Message: fmt.Sprintf("  %s %s", icon, shortTitle(title)),
			Index:   done,
			Total:   len(papers),
			Title:   title,
			Keep:    v.Keep,
			Verdict: v.Text,
		})
		done++
	}

	workers := f.Workers
	if workers <= 0 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)

	for i := range papers {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			v, ok := f.judgeOne(ctx, description, papers[i])
			if !ok {
				return nil
			}
			mu.Lock()
			verdicts[i] = v
			mu.Unlock()
			report(i)
			if v.EvalError {
				logger.Warn("relevance evaluation failed, keeping paper",
					slog.String("paper_id", string(v.PaperID)),
					slog.String("title", v.Title))
			}
			return nil
		})
	}
	_ = g.Wait()

	return verdicts, ctx.Err()
}

// judgeOne returns false when the call was abandoned because ctx ended.
func (f *Filter) judgeOne(ctx context.Context, description string, p types.Paper) (Verdict, bool) {
	v := Verdict{PaperID: p.ID, Title: p.Title, Evaluated: true}

	prompt, err := renderRelevancePrompt(description, p)
	if err == nil {
		var resp string
		resp, err = f.LLM.Complete(ctx, prompt, "")
		if err == nil {
			v.Text = firstLine(resp)
			v.Keep = IsRelevant(v.Text)
			return v, true
		}
	}
	if ctx.Err() != nil {
		return Verdict{}, false
	}
	v.Keep = true
	v.EvalError = true
	v.Text = EvalErrorVerdict
	return v, true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
