// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assist implements the free-form AI tools offered in AI mode:
// questions about one paper, multi-paper summaries, thematic analysis and
// citation suggestions. Every call is bracketed by ai_call and
// ai_output_generated events.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/litreview-study/internal/eventlog"
	"github.com/pdiddy/litreview-study/internal/llm"
	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// Feature labels carried on bracketing events.
const (
	FeatureQA          = "qa"
	FeatureSummary     = "summary"
	FeatureGapAnalysis = "gap_analysis"
)

var (
	// ErrEmptyQuestion is returned by Ask for a blank question.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrNoPapers is returned when a multi-paper tool receives no papers.
	ErrNoPapers = errors.New("select at least one paper")
	// ErrUnknownSummary is returned for a summary kind outside SummaryKinds.
	ErrUnknownSummary = errors.New("unknown summary type")
)

// SummaryKind selects the instruction used by Summarize.
type SummaryKind string

const (
	LiteratureOverview    SummaryKind = "Literature Overview"
	ResearchGaps          SummaryKind = "Research Gaps"
	MethodologyComparison SummaryKind = "Methodology Comparison"
	KeyFindings           SummaryKind = "Key Findings"
)

// SummaryKinds lists the summary kinds in menu order.
var SummaryKinds = []SummaryKind{LiteratureOverview, ResearchGaps, MethodologyComparison, KeyFindings}

var summaryInstructions = map[SummaryKind]string{
	LiteratureOverview:    "Provide a comprehensive literature overview summarizing the main themes, research areas, and contributions of these papers.",
	ResearchGaps:          "Identify potential research gaps and future research directions based on these papers.",
	MethodologyComparison: "Compare and contrast the research methodologies used across these papers.",
	KeyFindings:           "Summarize the key findings and conclusions from each paper.",
}

// ParseSummaryKind matches s against the summary kinds, ignoring case and
// accepting hyphens or underscores for spaces.
func ParseSummaryKind(s string) (SummaryKind, error) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, k := range SummaryKinds {
		if strings.EqualFold(norm, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownSummary)
}

// Instruction returns the prompt sent for k.
func (k SummaryKind) Instruction() string { return summaryInstructions[k] }

const (
	qaPreamble        = "You are a research assistant. Analyze the following academic paper and answer the user's question."
	themesPreamble    = "You are a research analyst. Analyze the following papers and identify major themes and connections."
	themesPrompt      = "Identify the major themes and connections between these papers. Create a thematic map of the research."
	citationsPreamble = "You are a research advisor. Based on the following papers, suggest how they could be cited together in a literature review."
	citationsPrompt   = "Suggest how these papers could be organized and cited together in a literature review section."
)

// Assistant runs the AI tools against one LLM gateway.
type Assistant struct {
	LLM    llm.Gateway
	Events eventlog.Recorder
	Logger *slog.Logger
}

// New returns an assistant. events may be nil.
func New(gw llm.Gateway, events eventlog.Recorder, logger *slog.Logger) *Assistant {
	return &Assistant{LLM: gw, Events: events, Logger: logger}
}

// Ask answers question about paper. The input length on the ai_call event
// is the question length in characters.
func (a *Assistant) Ask(ctx context.Context, sc types.SessionContext, paper types.Paper, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	background := qaPreamble + "\n\nPaper:\n" + paper.Context()
	return a.call(ctx, sc, FeatureQA, len([]rune(question)), question, background)
}

// Summarize produces a summary of kind over papers. The input length is the
// number of papers.
func (a *Assistant) Summarize(ctx context.Context, sc types.SessionContext, papers []types.Paper, kind SummaryKind) (string, error) {
	instruction := kind.Instruction()
	if instruction == "" {
		return "", fmt.Errorf("%q: %w", kind, ErrUnknownSummary)
	}
	if len(papers) == 0 {
		return "", ErrNoPapers
	}
	background := "You are an academic research analyst. Based on the following papers, " +
		strings.ToLower(instruction) + "\n\nPapers:\n" + joinContexts(papers)
	return a.call(ctx, sc, FeatureSummary, len(papers), instruction, background)
}

// Themes produces a thematic map of papers.
func (a *Assistant) Themes(ctx context.Context, sc types.SessionContext, papers []types.Paper) (string, error) {
	if len(papers) == 0 {
		return "", ErrNoPapers
	}
	background := themesPreamble + "\n\nPapers:\n" + joinContexts(papers)
	return a.call(ctx, sc, FeatureGapAnalysis, len(papers), themesPrompt, background)
}

// CitationSuggestions suggests how papers could be cited together in a
// literature review section.
func (a *Assistant) CitationSuggestions(ctx context.Context, sc types.SessionContext, papers []types.Paper) (string, error) {
	if len(papers) == 0 {
		return "", ErrNoPapers
	}
	background := citationsPreamble + "\n\nPapers:\n" + joinContexts(papers)
	return a.call(ctx, sc, FeatureGapAnalysis, len(papers), citationsPrompt, background)
}

// call logs ai_call, queries the model and logs ai_output_generated when a
// response arrives. A failed call leaves only the ai_call event.
func (a *Assistant) call(ctx context.Context, sc types.SessionContext, feature string, inputLen int, prompt, background string) (string, error) {
	if a.LLM == nil {
		return "", &llm.Error{Kind: llm.KindConfig, Provider: "none", Err: llm.ErrNoAPIKey}
	}
	logger := logging.OrDiscard(a.Logger)

	a.record(sc, types.EventAICall, types.Payload{
		"feature":      feature,
		"input_length": inputLen,
	})

	resp, err := a.LLM.Complete(ctx, prompt, background)
	if err != nil {
		logger.Warn("assistant call failed", slog.String("feature", feature), slog.Any("error", err))
		return "", err
	}

	a.record(sc, types.EventAIOutputGenerated, types.Payload{
		"feature":       feature,
		"output_length": len([]rune(resp)),
	})
	logger.Debug("assistant call complete",
		slog.String("feature", feature),
		slog.Int("output_length", len(resp)))
	return resp, nil
}

func (a *Assistant) record(sc types.SessionContext, et types.EventType, payload types.Payload) {
	if a.Events != nil {
		a.Events.Append(sc, et, payload)
	}
}

func joinContexts(papers []types.Paper) string {
	parts := make([]string, len(papers))
	for i, p := range papers {
		parts[i] = p.Context()
	}
	return strings.Join(parts, "\n\n")
}
