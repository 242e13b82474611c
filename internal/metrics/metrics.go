// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics derives usability, efficiency, and trust measures from a
// participant's event log. Compute is a pure function of its input.
package metrics

import (
	"github.com/pdiddy/litreview-study/pkg/types"
)

// IdleCapSeconds caps a single inter-event gap so time spent away from the
// dashboard does not inflate section totals.
const IdleCapSeconds = 300.0

// Payload values the feature-scoped verification rate keys on.
const (
	FeatureDeepResearch        = "deep_research"
	SourceDeepResearchExternal = "deep_research_external_link"
)

const (
	unknownFeature   = "unknown"
	unknownCondition = types.Condition("Unknown")
)

// Compute returns the derived metrics for events, which must be in log
// order. Ratios with a zero denominator are nil.
func Compute(events []types.Event) types.DerivedMetrics {
	counts := make(map[types.EventType]int)
	for _, ev := range events {
		counts[ev.EventType]++
	}

	m := types.DerivedMetrics{
		TaskCompletionTimeSeconds: completionTime(events),

		NumSearchQueries:          counts[types.EventSearchQuery],
		NumKeywordRefinements:     counts[types.EventKeywordRefine],
		NumPapersOpened:           counts[types.EventPaperOpen],
		NumPapersSelected:         counts[types.EventPaperSelect],
		NumDeepResearchLinkClicks: counts[types.EventDeepResearchLinkClick],
		EventCounts:               counts,

		TimeMetrics: timePerSection(events),

		AICalls:                  counts[types.EventAICall],
		SourceVerificationClicks: counts[types.EventSourceVerificationClick],
		AIOutputsGenerated:       counts[types.EventAIOutputGenerated],
	}

	m.AIRelianceRatio = ratio(m.AICalls, m.AICalls+m.NumSearchQueries)
	m.ExplorationDepth = ratio(m.NumPapersOpened, m.NumPapersSelected)
	m.VerificationRate = ratio(m.SourceVerificationClicks, m.AIOutputsGenerated)

	drClicks := 0
	m.AIFeatureBreakdown = make(map[string]int)
	for _, ev := range events {
		switch ev.EventType {
		case types.EventSourceVerificationClick:
			if st, _ := ev.StringField("source_type"); st == SourceDeepResearchExternal {
				drClicks++
			}
		case types.EventAIOutputGenerated:
			if f, _ := ev.StringField("feature"); f == FeatureDeepResearch {
				m.DeepResearchRuns++
			}
		case types.EventAICall:
			f, ok := ev.StringField("feature")
			if !ok {
				f = unknownFeature
			}
			m.AIFeatureBreakdown[f]++
		}
	}
	m.DeepResearchVerificationRate = ratio(drClicks, m.DeepResearchRuns)

	scoreSurveys(events, &m)
	return m
}

// completionTime spans the first task_start to the last task_submit. Both
// must exist.
func completionTime(events []types.Event) *float64 {
	start, submit := -1, -1
	for i, ev := range events {
		if ev.EventType == types.EventTaskStart && start < 0 {
			start = i
		}
		if ev.EventType == types.EventTaskSubmit {
			submit = i
		}
	}
	if start < 0 || submit < 0 {
		return nil
	}
	secs := events[submit].Timestamp.Sub(events[start].Timestamp).Seconds()
	return &secs
}

// timePerSection attributes each gap between consecutive events to the
// earlier event's (condition, section), capped at IdleCapSeconds. Both
// canonical conditions are always present in the result.
func timePerSection(events []types.Event) map[types.Condition]map[string]float64 {
	out := make(map[types.Condition]map[string]float64)
	for _, c := range types.Conditions {
		out[c] = make(map[string]float64)
	}

	for i := 0; i+1 < len(events); i++ {
		curr, next := events[i], events[i+1]
		gap := next.Timestamp.Sub(curr.Timestamp).Seconds()
		if gap > IdleCapSeconds {
			gap = IdleCapSeconds
		}
		if gap < 0 {
			gap = 0
		}

		cond := curr.Condition
		if cond == "" {
			cond = unknownCondition
		}
		sec := curr.Section
		if sec == "" {
			sec = types.DefaultSection
		}

		if out[cond] == nil {
			out[cond] = make(map[string]float64)
		}
		out[cond][sec] += gap
	}
	return out
}

func ratio(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	r := float64(num) / float64(den)
	return &r
}
