// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview-study/internal/llm"
	"github.com/pdiddy/litreview-study/pkg/types"
)

type recorded struct {
	et      types.EventType
	payload types.Payload
}

type fakeEvents struct{ got []recorded }

func (f *fakeEvents) Append(_ types.SessionContext, et types.EventType, payload any) {
	f.got = append(f.got, recorded{et, payload.(types.Payload)})
}

type capture struct {
	prompt, background string
}

func echo(c *capture, reply string) llm.Gateway {
	return llm.GatewayFunc(func(_ context.Context, prompt, background string) (string, error) {
		c.prompt, c.background = prompt, background
		return reply, nil
	})
}

var (
	sc     = types.SessionContext{ParticipantID: "p1", Condition: types.ConditionAI}
	resnet = types.Paper{
		Title:    "Deep Residual Learning",
		Authors:  []string{"Kaiming He", "Xiangyu Zhang"},
		Abstract: "Residual nets ease training.",
		Keywords: []string{"cnn"},
	}
	bert = types.Paper{Title: "BERT", Authors: []string{"Jacob Devlin"}}
)

func TestAskBracketsCall(t *testing.T) {
	var c capture
	ev := &fakeEvents{}
	a := New(echo(&c, "It uses residual blocks."), ev, nil)

	got, err := a.Ask(context.Background(), sc, resnet, "  What method?  ")
	require.NoError(t, err)
	assert.Equal(t, "It uses residual blocks.", got)

	assert.Equal(t, "What method?", c.prompt)
	assert.Contains(t, c.background, "You are a research assistant.")
	assert.Contains(t, c.background, "Paper:\nTitle: Deep Residual Learning\nAuthors: Kaiming He, Xiangyu Zhang")

	require.Len(t, ev.got, 2)
	assert.Equal(t, types.EventAICall, ev.got[0].et)
	assert.Equal(t, types.Payload{"feature": FeatureQA, "input_length": 12}, ev.got[0].payload)
	assert.Equal(t, types.EventAIOutputGenerated, ev.got[1].et)
	assert.Equal(t, types.Payload{"feature": FeatureQA, "output_length": 24}, ev.got[1].payload)
}

func TestAskEmptyQuestion(t *testing.T) {
	ev := &fakeEvents{}
	_, err := New(echo(&capture{}, ""), ev, nil).Ask(context.Background(), sc, resnet, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Empty(t, ev.got)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		kind SummaryKind
		want string
	}{
		{LiteratureOverview, "Provide a comprehensive literature overview"},
		{ResearchGaps, "Identify potential research gaps"},
		{MethodologyComparison, "Compare and contrast"},
		{KeyFindings, "Summarize the key findings"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var c capture
			ev := &fakeEvents{}
			_, err := New(echo(&c, "ok"), ev, nil).Summarize(context.Background(), sc, []types.Paper{resnet, bert}, tt.kind)
			require.NoError(t, err)

			assert.Contains(t, c.prompt, tt.want)
			assert.Contains(t, c.background, "Based on the following papers, "+lowerFirst(tt.want))
			assert.Contains(t, c.background, "Title: BERT\nAuthors: Jacob Devlin\nAbstract: N/A")
			require.Len(t, ev.got, 2)
			assert.Equal(t, 2, ev.got[0].payload["input_length"])
			assert.Equal(t, FeatureSummary, ev.got[0].payload["feature"])
		})
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}

func TestSummarizeRejectsBadInput(t *testing.T) {
	a := New(echo(&capture{}, "ok"), nil, nil)
	_, err := a.Summarize(context.Background(), sc, nil, KeyFindings)
	assert.ErrorIs(t, err, ErrNoPapers)

	_, err = a.Summarize(context.Background(), sc, []types.Paper{bert}, "Poem")
	assert.ErrorIs(t, err, ErrUnknownSummary)
}

func TestInsightsUseGapAnalysisFeature(t *testing.T) {
	var c capture
	ev := &fakeEvents{}
	a := New(echo(&c, "themes"), ev, nil)
	ps := []types.Paper{resnet, bert}

	_, err := a.Themes(context.Background(), sc, ps)
	require.NoError(t, err)
	assert.Contains(t, c.prompt, "thematic map")
	assert.Contains(t, c.background, "You are a research analyst.")

	_, err = a.CitationSuggestions(context.Background(), sc, ps)
	require.NoError(t, err)
	assert.Contains(t, c.prompt, "cited together")
	assert.Contains(t, c.background, "You are a research advisor.")

	require.Len(t, ev.got, 4)
	for _, r := range ev.got {
		assert.Equal(t, FeatureGapAnalysis, r.payload["feature"])
	}

	_, err = a.Themes(context.Background(), sc, nil)
	assert.ErrorIs(t, err, ErrNoPapers)
	_, err = a.CitationSuggestions(context.Background(), sc, nil)
	assert.ErrorIs(t, err, ErrNoPapers)
}

func TestFailedCallLogsOnlyAICall(t *testing.T) {
	ev := &fakeEvents{}
	gw := llm.GatewayFunc(func(context.Context, string, string) (string, error) {
		return "", &llm.Error{Kind: llm.KindStatus, Provider: "fake", Status: 503, Err: errors.New("unavailable")}
	})
	_, err := New(gw, ev, nil).Ask(context.Background(), sc, resnet, "why?")
	assert.True(t, llm.IsKind(err, llm.KindStatus))
	require.Len(t, ev.got, 1)
	assert.Equal(t, types.EventAICall, ev.got[0].et)
}

func TestNoGateway(t *testing.T) {
	_, err := New(nil, nil, nil).Ask(context.Background(), sc, resnet, "why?")
	assert.True(t, llm.IsKind(err, llm.KindConfig))
	assert.ErrorIs(t, err, llm.ErrNoAPIKey)
}

func TestParseSummaryKind(t *testing.T) {
	tests := []struct {
		in      string
		want    SummaryKind
		wantErr bool
	}{
		{"Literature Overview", LiteratureOverview, false},
		{"research-gaps", ResearchGaps, false},
		{"methodology_comparison", MethodologyComparison, false},
		{" KEY FINDINGS ", KeyFindings, false},
		{"abstract", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSummaryKind(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownSummary, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
