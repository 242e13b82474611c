// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview-study/pkg/types"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// ev builds an event offset seconds after t0.
func ev(offset int, et types.EventType, cond types.Condition, section string, payload map[string]any) types.Event {
	value := json.RawMessage(`{}`)
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			panic(err)
		}
		value = data
	}
	return types.Event{
		ParticipantID: "p01",
		Condition:     cond,
		Section:       section,
		EventType:     et,
		EventValue:    value,
		Timestamp:     t0.Add(time.Duration(offset) * time.Second),
	}
}

func simple(offset int, et types.EventType) types.Event {
	return ev(offset, et, types.ConditionManual, "Home", nil)
}

func susResponses(odd, even int) map[string]any {
	r := map[string]any{}
	for i := 1; i <= 10; i++ {
		if i%2 == 1 {
			r[fmt.Sprintf("Q%d", i)] = odd
		} else {
			r[fmt.Sprintf("Q%d", i)] = even
		}
	}
	return r
}

func survey(offset int, instrument string, responses map[string]any) types.Event {
	return ev(offset, types.EventSurveyResponse, types.ConditionManual, "Survey",
		map[string]any{"instrument": instrument, "responses": responses})
}

// --- Completion time ---

func TestCompletionTime(t *testing.T) {
	tests := []struct {
		name   string
		events []types.Event
		want   *float64
	}{
		{"no events", nil, nil},
		{"start only", []types.Event{simple(0, types.EventTaskStart)}, nil},
		{"submit only", []types.Event{simple(10, types.EventTaskSubmit)}, nil},
		{
			"first start to last submit",
			[]types.Event{
				simple(5, types.EventTaskStart),
				simple(60, types.EventTaskSubmit),
				simple(70, types.EventTaskStart),
				simple(125, types.EventTaskSubmit),
			},
			ptr(120),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.events).TaskCompletionTimeSeconds
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

// --- Counts ---

func TestSimpleCounts(t *testing.T) {
	events := []types.Event{
		simple(0, types.EventSearchQuery),
		simple(1, types.EventSearchQuery),
		simple(2, types.EventKeywordRefine),
		simple(3, types.EventPaperOpen),
		simple(4, types.EventPaperOpen),
		simple(5, types.EventPaperOpen),
		simple(6, types.EventPaperSelect),
		simple(7, types.EventDeepResearchLinkClick),
		simple(8, types.EventType("custom_event")),
	}
	m := Compute(events)
	assert.Equal(t, 2, m.NumSearchQueries)
	assert.Equal(t, 1, m.NumKeywordRefinements)
	assert.Equal(t, 3, m.NumPapersOpened)
	assert.Equal(t, 1, m.NumPapersSelected)
	assert.Equal(t, 1, m.NumDeepResearchLinkClicks)
	assert.Equal(t, 1, m.EventCounts["custom_event"])
	require.NotNil(t, m.ExplorationDepth)
	assert.InDelta(t, 3.0, *m.ExplorationDepth, 1e-9)
}

// --- Time per condition/section ---

func TestTimePerSectionCapsIdleGaps(t *testing.T) {
	events := []types.Event{
		ev(0, types.EventPaperOpen, types.ConditionManual, "Papers", nil),
		ev(400, types.EventPaperOpen, types.ConditionManual, "Papers", nil),
	}
	m := Compute(events)
	assert.InDelta(t, 300.0, m.TimeMetrics[types.ConditionManual]["Papers"], 1e-9)
}

func TestTimePerSectionAttributesToEarlierEvent(t *testing.T) {
	events := []types.Event{
		ev(0, types.EventTaskStart, types.ConditionManual, "Home", nil),
		ev(30, types.EventSearchQuery, types.ConditionManual, "Search Online", nil),
		ev(50, types.EventAICall, types.ConditionAI, "AI Assistant", nil),
		ev(95, types.EventTaskSubmit, types.ConditionAI, "Home", nil),
	}
	m := Compute(events)

	assert.InDelta(t, 30.0, m.TimeMetrics[types.ConditionManual]["Home"], 1e-9)
	assert.InDelta(t, 20.0, m.TimeMetrics[types.ConditionManual]["Search Online"], 1e-9)
	assert.InDelta(t, 45.0, m.TimeMetrics[types.ConditionAI]["AI Assistant"], 1e-9)
	assert.NotContains(t, m.TimeMetrics[types.ConditionAI], "Home", "the last event has no successor")
	assert.InDelta(t, 50.0, m.TotalTime(types.ConditionManual), 1e-9)
}

func TestTimePerSectionAlwaysHasBothConditions(t *testing.T) {
	for _, events := range [][]types.Event{nil, {simple(0, types.EventTaskStart)}} {
		m := Compute(events)
		require.Contains(t, m.TimeMetrics, types.ConditionManual)
		require.Contains(t, m.TimeMetrics, types.ConditionAI)
		assert.Empty(t, m.TimeMetrics[types.ConditionAI])
	}
}

// --- Ratios ---

func TestAIRelianceRatio(t *testing.T) {
	m := Compute(nil)
	assert.Nil(t, m.AIRelianceRatio)

	events := []types.Event{
		simple(0, types.EventAICall),
		simple(1, types.EventAICall),
		simple(2, types.EventAICall),
		simple(3, types.EventSearchQuery),
	}
	m = Compute(events)
	require.NotNil(t, m.AIRelianceRatio)
	assert.InDelta(t, 0.75, *m.AIRelianceRatio, 1e-9)
	assert.Equal(t, 3, m.AICalls)
}

func TestZeroDenominatorsAreNil(t *testing.T) {
	m := Compute([]types.Event{
		simple(0, types.EventPaperOpen),
		simple(1, types.EventSourceVerificationClick),
	})
	assert.Nil(t, m.ExplorationDepth)
	assert.Nil(t, m.VerificationRate)
	assert.Nil(t, m.DeepResearchVerificationRate)
	assert.Nil(t, m.AIRelianceRatio)
}

func TestVerificationRates(t *testing.T) {
	events := []types.Event{
		ev(0, types.EventAIOutputGenerated, types.ConditionAI, "AI", map[string]any{"feature": "qa"}),
		ev(1, types.EventAIOutputGenerated, types.ConditionAI, "AI", map[string]any{"feature": "deep_research"}),
		ev(2, types.EventAIOutputGenerated, types.ConditionAI, "AI", map[string]any{"feature": "deep_research"}),
		ev(3, types.EventSourceVerificationClick, types.ConditionAI, "AI", map[string]any{"source_type": "external_link"}),
		ev(4, types.EventSourceVerificationClick, types.ConditionAI, "AI", map[string]any{"source_type": "deep_research_external_link"}),
	}
	m := Compute(events)

	require.NotNil(t, m.VerificationRate)
	assert.InDelta(t, 2.0/3.0, *m.VerificationRate, 1e-9)
	assert.Equal(t, 2, m.DeepResearchRuns)
	require.NotNil(t, m.DeepResearchVerificationRate)
	assert.InDelta(t, 0.5, *m.DeepResearchVerificationRate, 1e-9)
}

func TestAIFeatureBreakdown(t *testing.T) {
	events := []types.Event{
		ev(0, types.EventAICall, types.ConditionAI, "AI", map[string]any{"feature": "qa"}),
		ev(1, types.EventAICall, types.ConditionAI, "AI", map[string]any{"feature": "qa"}),
		ev(2, types.EventAICall, types.ConditionAI, "AI", map[string]any{"feature": "summary"}),
		ev(3, types.EventAICall, types.ConditionAI, "AI", nil),
	}
	m := Compute(events)
	assert.Equal(t, map[string]int{"qa": 2, "summary": 1, "unknown": 1}, m.AIFeatureBreakdown)
}

// --- Surveys ---

func TestSUSScore(t *testing.T) {
	tests := []struct {
		name      string
		responses map[string]any
		want      *float64
	}{
		{"worst", susResponses(1, 5), ptr(0)},
		{"best", susResponses(5, 1), ptr(100)},
		{"neutral", susResponses(3, 3), ptr(50)},
		{"missing item", func() map[string]any { r := susResponses(5, 1); delete(r, "Q7"); return r }(), nil},
		{"non numeric", func() map[string]any { r := susResponses(5, 1); r["Q2"] = "often"; return r }(), nil},
		{"out of range", func() map[string]any { r := susResponses(5, 1); r["Q3"] = 9; return r }(), nil},
		{"empty", map[string]any{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Round-trip through JSON so values are float64 as read from a log.
			events := []types.Event{survey(0, InstrumentSUS, tt.responses)}
			got := Compute(events).SUSScore
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestMeanScores(t *testing.T) {
	events := []types.Event{
		survey(0, InstrumentNASATLX, map[string]any{"mental": 6, "physical": 2, "temporal": 4, "note": "tired"}),
		survey(1, InstrumentTrust, map[string]any{}),
		survey(2, InstrumentFatigue, map[string]any{"Q1": 3}),
	}
	m := Compute(events)
	require.NotNil(t, m.NASATLXMean)
	assert.InDelta(t, 4.0, *m.NASATLXMean, 1e-9)
	assert.Nil(t, m.TrustMean, "no numeric responses")
	assert.Nil(t, m.SUSScore, "no SUS submitted")
}

func TestLaterSurveyReplacesEarlier(t *testing.T) {
	events := []types.Event{
		survey(0, InstrumentTrust, map[string]any{"Q1": 2}),
		survey(1, InstrumentTrust, map[string]any{"Q1": 6}),
	}
	m := Compute(events)
	require.NotNil(t, m.TrustMean)
	assert.InDelta(t, 6.0, *m.TrustMean, 1e-9)
}

// --- Purity ---

func TestComputeIsDeterministic(t *testing.T) {
	events := []types.Event{
		ev(0, types.EventTaskStart, types.ConditionManual, "Home", nil),
		ev(12, types.EventSearchQuery, types.ConditionManual, "Search Online", map[string]any{"query_text": "ssm"}),
		ev(40, types.EventAICall, types.ConditionAI, "AI", map[string]any{"feature": "deep_research"}),
		ev(900, types.EventAIOutputGenerated, types.ConditionAI, "AI", map[string]any{"feature": "deep_research"}),
		survey(950, InstrumentNASATLX, map[string]any{"a": 1.5, "b": 2.25, "c": 7}),
		ev(1000, types.EventTaskSubmit, types.ConditionAI, "Home", nil),
	}
	snapshot := make([]types.Event, len(events))
	copy(snapshot, events)

	a, b := Compute(events), Compute(events)
	assert.Equal(t, a, b)
	assert.Equal(t, snapshot, events, "input must not be mutated")
}

// --- Formatting ---

func TestFormatTableRendersNotApplicable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Compute(nil), &buf)
	out := buf.String()
	assert.Contains(t, out, "AI reliance ratio")
	assert.Contains(t, out, NotApplicable)
	assert.NotContains(t, out, "NaN")
}

func TestFormatJSONWritesNulls(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(Compute(nil), &buf))

	var obj map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &obj))
	assert.Contains(t, obj, "ai_reliance_ratio")
	assert.Nil(t, obj["ai_reliance_ratio"])
	assert.Contains(t, obj["time_metrics"], string(types.ConditionAI))
}

func ptr(v float64) *float64 { return &v }
