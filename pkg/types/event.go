// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Condition is the experimental arm active when an event occurred. The
// string values are the labels written to the event log.
type Condition string

const (
	ConditionManual Condition = "A (Manual model)"
	ConditionAI     Condition = "B (AI model)"
)

// Conditions lists the canonical conditions in report order.
var Conditions = []Condition{ConditionManual, ConditionAI}

// ConditionFor maps the session's AI-mode switch to a Condition.
func ConditionFor(aiMode bool) Condition {
	if aiMode {
		return ConditionAI
	}
	return ConditionManual
}

// ParseCondition accepts either a log label ("B (AI model)") or the short
// form ("AI", "manual").
func ParseCondition(s string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual", "a", strings.ToLower(string(ConditionManual)):
		return ConditionManual, nil
	case "ai", "b", strings.ToLower(string(ConditionAI)):
		return ConditionAI, nil
	}
	return "", fmt.Errorf("unknown condition %q: want Manual or AI", s)
}

// Short returns "Manual" or "AI"; unknown labels are returned unchanged.
func (c Condition) Short() string {
	switch c {
	case ConditionManual:
		return "Manual"
	case ConditionAI:
		return "AI"
	}
	return string(c)
}

// EventType names an interaction event. The vocabulary is open-ended; the
// constants below are the ones the metrics engine understands.
type EventType string

const (
	EventTaskStart               EventType = "task_start"
	EventTaskSubmit              EventType = "task_submit"
	EventSearchQuery             EventType = "search_query"
	EventKeywordRefine           EventType = "keyword_refine"
	EventPaperOpen               EventType = "paper_open"
	EventPaperSelect             EventType = "paper_select"
	EventAICall                  EventType = "ai_call"
	EventAIOutputGenerated       EventType = "ai_output_generated"
	EventSourceVerificationClick EventType = "source_verification_click"
	EventDeepResearchLinkClick   EventType = "deep_research_link_click"
	EventSummarySubmit           EventType = "summary_submit"
	EventGapSubmit               EventType = "gap_submit"
	EventKeywordsSubmit          EventType = "keywords_submit"
	EventSurveyResponse          EventType = "survey_response"
)

// DefaultSection is the UI location recorded when none is set.
const DefaultSection = "Home"

// SessionContext carries the participant identity and UI location that every
// appended event is stamped with. It replaces ambient session state: callers
// pass it explicitly.
type SessionContext struct {
	// ParticipantID keys the event log. Empty means no identity yet.
	ParticipantID string `json:"participant_id" yaml:"participant_id"`

	// ParticipantName is the display name entered at setup.
	ParticipantName string `json:"participant_name" yaml:"participant_name"`

	// Condition is the currently active mode.
	Condition Condition `json:"condition" yaml:"condition"`

	// TaskID identifies the study task (e.g. "T1 (Targeted Literature Search)").
	TaskID string `json:"task_id" yaml:"task_id"`

	// Section is the UI location label; empty is recorded as DefaultSection.
	Section string `json:"section" yaml:"section"`
}

// Identified reports whether a participant identity has been established.
func (s SessionContext) Identified() bool {
	return strings.TrimSpace(s.ParticipantID) != ""
}

// WithSection returns a copy of s located at section.
func (s SessionContext) WithSection(section string) SessionContext {
	s.Section = section
	return s
}

// Event is one immutable, timestamped record of a user action or system
// outcome. Field names match the JSON Lines log format.
type Event struct {
	ParticipantID   string          `json:"participant_id" yaml:"participant_id"`
	ParticipantName string          `json:"participant_name" yaml:"participant_name"`
	Condition       Condition       `json:"condition" yaml:"condition"`
	TaskID          string          `json:"task_id" yaml:"task_id"`
	Section         string          `json:"section" yaml:"section"`
	EventType       EventType       `json:"event_type" yaml:"event_type"`
	EventValue      json.RawMessage `json:"event_value" yaml:"event_value"`
	Timestamp       time.Time       `json:"timestamp" yaml:"timestamp"`
}

// Payload is a free-form event_value object.
type Payload map[string]any

// Fields decodes EventValue as a JSON object. Non-object payloads (strings,
// numbers, null) yield an empty map.
func (e Event) Fields() map[string]any {
	var m map[string]any
	if len(e.EventValue) == 0 {
		return map[string]any{}
	}
	if err := json.Unmarshal(e.EventValue, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// StringField returns the string value of a top-level payload field.
func (e Event) StringField(name string) (string, bool) {
	v, ok := e.Fields()[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// DecodeValue unmarshals EventValue into v.
func (e Event) DecodeValue(v any) error {
	if len(e.EventValue) == 0 {
		return nil
	}
	return json.Unmarshal(e.EventValue, v)
}
