// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DerivedMetrics is a projection of one participant's event list. It is
// recomputed on every report request and never persisted. Pointer-valued
// fields are nil when the metric is not applicable (zero denominator,
// missing task boundary, incomplete survey); renderers must show "N/A",
// never zero.
type DerivedMetrics struct {
	// TaskCompletionTimeSeconds spans the first task_start to the last task_submit.
	TaskCompletionTimeSeconds *float64 `json:"task_completion_time_seconds" yaml:"task_completion_time_seconds"`

	NumSearchQueries          int `json:"num_search_queries" yaml:"num_search_queries"`
	NumKeywordRefinements     int `json:"num_keyword_refinements" yaml:"num_keyword_refinements"`
	NumPapersOpened           int `json:"num_papers_opened" yaml:"num_papers_opened"`
	NumPapersSelected         int `json:"num_papers_selected" yaml:"num_papers_selected"`
	NumDeepResearchLinkClicks int `json:"num_deep_research_link_clicks" yaml:"num_deep_research_link_clicks"`

	// EventCounts tallies every event type present in the log.
	EventCounts map[EventType]int `json:"event_counts" yaml:"event_counts"`

	// TimeMetrics holds seconds spent per condition per section. Both
	// canonical conditions are always present.
	TimeMetrics map[Condition]map[string]float64 `json:"time_metrics" yaml:"time_metrics"`

	AICalls         int      `json:"ai_calls" yaml:"ai_calls"`
	AIRelianceRatio *float64 `json:"ai_reliance_ratio" yaml:"ai_reliance_ratio"`

	ExplorationDepth *float64 `json:"exploration_depth" yaml:"exploration_depth"`

	SourceVerificationClicks int      `json:"source_verification_clicks" yaml:"source_verification_clicks"`
	AIOutputsGenerated       int      `json:"ai_outputs_generated" yaml:"ai_outputs_generated"`
	VerificationRate         *float64 `json:"verification_rate" yaml:"verification_rate"`

	DeepResearchRuns             int      `json:"deep_research_runs" yaml:"deep_research_runs"`
	DeepResearchVerificationRate *float64 `json:"deep_research_verification_rate" yaml:"deep_research_verification_rate"`

	// AIFeatureBreakdown counts ai_call events by payload feature.
	AIFeatureBreakdown map[string]int `json:"ai_feature_breakdown" yaml:"ai_feature_breakdown"`

	SUSScore    *float64 `json:"sus_score" yaml:"sus_score"`
	NASATLXMean *float64 `json:"nasa_tlx_mean" yaml:"nasa_tlx_mean"`
	TrustMean   *float64 `json:"trust_mean" yaml:"trust_mean"`
}

// TotalTime returns the seconds recorded for condition across all sections.
func (m DerivedMetrics) TotalTime(c Condition) float64 {
	var total float64
	for _, secs := range m.TimeMetrics[c] {
		total += secs
	}
	return total
}
