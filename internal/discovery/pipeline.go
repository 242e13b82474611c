// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discovery implements Deep Research: a four-stage pipeline that
// turns a free-text research description into a deduplicated,
// relevance-filtered list of candidate papers.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/litreview-study/internal/eventlog"
	"github.com/pdiddy/litreview-study/internal/llm"
	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/internal/search"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// FeatureDeepResearch is the feature label on bracketing events.
const FeatureDeepResearch = "deep_research"

// ErrEmptyDescription is returned when the research description is blank.
var ErrEmptyDescription = errors.New("research description is empty")

// Pipeline wires the gateways and settings of one Deep Research setup. A
// Pipeline holds no per-run state and may run concurrently.
type Pipeline struct {
	LLM    llm.Gateway
	Search search.Gateway
	Events eventlog.Recorder

	PageSize    int
	PacingDelay time.Duration
	Workers     int

	Logger *slog.Logger
	Now    func() time.Time
}

// New builds a pipeline from configuration.
func New(gw llm.Gateway, sg search.Gateway, events eventlog.Recorder, cfg types.StudyConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		LLM:         gw,
		Search:      sg,
		Events:      events,
		PageSize:    cfg.Search.PageSize,
		PacingDelay: cfg.Search.PacingDelay,
		Workers:     cfg.Discovery.Workers,
		Logger:      logger,
	}
}

// Run executes the four stages in sequence for sc's participant. It returns
// an error only for a blank description or missing gateway, or ctx.Err()
// together with the partial report when cancelled. Model and network
// failures degrade to fallbacks and are visible in the report.
func (p *Pipeline) Run(ctx context.Context, sc types.SessionContext, description string, sink ProgressSink) (*RunReport, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}
	if p.LLM == nil || p.Search == nil {
		return nil, fmt.Errorf("deep research needs both an LLM and a search gateway")
	}
	if sink == nil {
		sink = NopSink{}
	}
	logger := logging.OrDiscard(p.Logger)
	now := p.Now
	if now == nil {
		now = time.Now
	}

	rep := &RunReport{
		RunID:         uuid.NewString(),
		ParticipantID: sc.ParticipantID,
		Condition:     sc.Condition,
		Description:   description,
		Backend:       p.Search.Name(),
		StartedAt:     now().UTC(),
	}
	finish := func(err error) (*RunReport, error) {
		rep.FinishedAt = now().UTC()
		if err != nil {
			rep.Cancelled = true
			logger.Info("deep research cancelled",
				slog.String("run_id", rep.RunID),
				slog.Int("evaluated", rep.Evaluated))
		}
		return rep, err
	}

	p.record(sc, types.EventAICall, types.Payload{
		"feature":      FeatureDeepResearch,
		"input_length": len([]rune(description)),
	})

	// Stage 1.
	sink.Report(Progress{Stage: StageExtract, Message: stepLabel(StageExtract, "Extracting search keywords from your description...")})
	rep.Extraction = ExtractKeywords(ctx, p.LLM, description)
	if rep.Extraction.IsFallback() {
		logger.Warn("keyword extraction fell back to description words",
			slog.String("reason", rep.Extraction.Reason))
	}
	for i, set := range rep.Extraction.KeywordSets {
		sink.Report(Progress{Stage: StageExtract, Message: fmt.Sprintf("  Keyword set %d: %s", i+1, strings.Join(set, ", "))})
	}
	if err := ctx.Err(); err != nil {
		return finish(err)
	}

	// Stage 2.
	sink.Report(Progress{Stage: StageCollect, Message: stepLabel(StageCollect, fmt.Sprintf("Searching %s with %d keyword sets...",
		search.DisplayName(p.Search.Name()), len(rep.Extraction.KeywordSets)))})
	collector := &Collector{Search: p.Search, PageSize: p.PageSize, PacingDelay: p.PacingDelay, Logger: p.Logger}
	raw, queries, err := collector.Collect(ctx, rep.Extraction.KeywordSets)
	rep.Queries = queries
	rep.Raw = len(raw)
	sink.Report(Progress{Stage: StageCollect, Message: fmt.Sprintf("  Found %d raw results.", rep.Raw)})
	if err != nil {
		return finish(err)
	}
	if rep.Raw == 0 {
		sink.Report(Progress{Stage: StageDone, Message: "Deep Research completed - no results found."})
		return finish(nil)
	}

	// Stage 3.
	sink.Report(Progress{Stage: StageDeduplicate, Message: stepLabel(StageDeduplicate, "Removing duplicate papers...")})
	unique := Deduplicate(raw)
	rep.Unique = len(unique)
	rep.DuplicatesRemoved = rep.Raw - rep.Unique
	sink.Report(Progress{Stage: StageDeduplicate, Message: fmt.Sprintf("  Removed %d duplicates. %d unique papers remain.", rep.DuplicatesRemoved, rep.Unique)})

	// Stage 4.
	sink.Report(Progress{Stage: StageFilter, Message: stepLabel(StageFilter, fmt.Sprintf("Evaluating relevance of %d papers...", rep.Unique))})
	filter := &Filter{LLM: p.LLM, Workers: p.Workers, Logger: p.Logger}
	verdicts, err := filter.Judge(ctx, description, unique, sink)
	rep.Verdicts = verdicts
	for i, v := range verdicts {
		if v.Evaluated {
			rep.Evaluated++
		}
		if v.Keep {
			rep.Results = append(rep.Results, unique[i])
		}
	}
	rep.Kept = len(rep.Results)
	if err != nil {
		return finish(err)
	}

	sink.Report(Progress{Stage: StageDone, Message: fmt.Sprintf("Deep Research complete - %d relevant papers found!", rep.Kept)})
	p.record(sc, types.EventAIOutputGenerated, types.Payload{
		"feature":       FeatureDeepResearch,
		"output_length": rep.Kept,
	})
	return finish(nil)
}

func (p *Pipeline) record(sc types.SessionContext, et types.EventType, payload types.Payload) {
	if p.Events != nil {
		p.Events.Append(sc, et, payload)
	}
}
