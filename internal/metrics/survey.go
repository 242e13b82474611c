// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"fmt"
	"sort"

	"github.com/pdiddy/litreview-study/pkg/types"
)

// Survey instrument identifiers as written to survey_response payloads.
const (
	InstrumentSUS          = "SUS"
	InstrumentNASATLX      = "NASA_TLX"
	InstrumentTrust        = "Trust"
	InstrumentFatigue      = "Fatigue"
	InstrumentAIPreference = "AI_Preference"
)

// SurveyPayload is the event_value of a survey_response event.
type SurveyPayload struct {
	Instrument string         `json:"instrument"`
	Responses  map[string]any `json:"responses"`
}

// scoreSurveys fills the survey scores from survey_response events. A
// later response for the same instrument replaces an earlier one.
func scoreSurveys(events []types.Event, m *types.DerivedMetrics) {
	for _, ev := range events {
		if ev.EventType != types.EventSurveyResponse {
			continue
		}
		var p SurveyPayload
		if err := ev.DecodeValue(&p); err != nil {
			continue
		}
		switch p.Instrument {
		case InstrumentSUS:
			m.SUSScore = SUSScore(p.Responses)
		case InstrumentNASATLX:
			m.NASATLXMean = MeanScore(p.Responses)
		case InstrumentTrust:
			m.TrustMean = MeanScore(p.Responses)
		}
	}
}

// SUSScore scores the System Usability Scale from responses keyed Q1..Q10 on
// a 1-5 scale. Odd items contribute value-1, even items 5-value; the sum is
// scaled by 2.5 to 0-100. Any missing, non-numeric, or out-of-range item
// yields nil: there is no partial scoring.
func SUSScore(responses map[string]any) *float64 {
	total := 0.0
	for i := 1; i <= 10; i++ {
		v, ok := numeric(responses[fmt.Sprintf("Q%d", i)])
		if !ok || v < 1 || v > 5 {
			return nil
		}
		if i%2 == 1 {
			total += v - 1
		} else {
			total += 5 - v
		}
	}
	score := total * 2.5
	return &score
}

// MeanScore averages every numeric response, or returns nil when there are
// none. Used for NASA-TLX and Trust (1-7 scales).
func MeanScore(responses map[string]any) *float64 {
	keys := make([]string, 0, len(responses))
	for k := range responses {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sum float64
	n := 0
	for _, k := range keys {
		if v, ok := numeric(responses[k]); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
