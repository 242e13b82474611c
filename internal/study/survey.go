// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package study

import (
	"fmt"
	"strings"

	"github.com/pdiddy/litreview-study/internal/metrics"
)

// Item is one rated statement of a survey instrument.
type Item struct {
	Key       string `json:"key" yaml:"key"`
	Statement string `json:"statement" yaml:"statement"`
	Tip       string `json:"tip,omitempty" yaml:"tip,omitempty"`
}

// Instrument is a post-session questionnaire answered on an integer scale.
type Instrument struct {
	Name    string `json:"name" yaml:"name"`
	Title   string `json:"title" yaml:"title"`
	Min     int    `json:"min" yaml:"min"`
	Max     int    `json:"max" yaml:"max"`
	Default int    `json:"default" yaml:"default"`
	Items   []Item `json:"items" yaml:"items"`

	// AIOnly instruments are offered only when AI mode was used.
	AIOnly bool `json:"ai_only,omitempty" yaml:"ai_only,omitempty"`
}

// Defaults returns every item at the instrument's default rating.
func (in Instrument) Defaults() map[string]int {
	out := make(map[string]int, len(in.Items))
	for _, it := range in.Items {
		out[it.Key] = in.Default
	}
	return out
}

// Validate checks that responses rate every item within range and carry
// no unknown keys.
func (in Instrument) Validate(responses map[string]int) error {
	known := make(map[string]bool, len(in.Items))
	for _, it := range in.Items {
		known[it.Key] = true
		v, ok := responses[it.Key]
		if !ok {
			return fmt.Errorf("%s: missing response for %s", in.Name, it.Key)
		}
		if v < in.Min || v > in.Max {
			return fmt.Errorf("%s: %s=%d outside %d-%d", in.Name, it.Key, v, in.Min, in.Max)
		}
	}
	for k := range responses {
		if !known[k] {
			return fmt.Errorf("%s: unknown item %s", in.Name, k)
		}
	}
	return nil
}

func numbered(statements ...[2]string) []Item {
	items := make([]Item, len(statements))
	for i, s := range statements {
		items[i] = Item{Key: fmt.Sprintf("Q%d", i+1), Statement: s[0], Tip: s[1]}
	}
	return items
}

// Instruments is the survey battery in presentation order.
var Instruments = []Instrument{
	{
		Name: metrics.InstrumentSUS, Title: "System Usability Scale (SUS)",
		Min: 1, Max: 5, Default: 3,
		Items: numbered(
			[2]string{"I think that I would like to use this system frequently.", "Would you choose this tool regularly for literature reviews?"},
			[2]string{"I found the system unnecessarily complex.", "Did the interface have too many features or confusing layouts?"},
			[2]string{"I thought the system was easy to use.", "How intuitive did the controls and workflows feel?"},
			[2]string{"I think that I would need the support of a technical person to use this system.", "Could you use this tool without assistance?"},
			[2]string{"I found the various functions in this system were well integrated.", "Did search, filtering, and AI tools work together smoothly?"},
			[2]string{"I thought there was too much inconsistency in this system.", "Did parts of the interface behave in contradictory ways?"},
			[2]string{"I would imagine that most people would learn to use this system very quickly.", "Could a colleague with no training pick this up easily?"},
			[2]string{"I found the system very cumbersome to use.", "Did completing tasks require too many steps?"},
			[2]string{"I felt very confident using the system.", "How sure were you about what to do at each step?"},
			[2]string{"I needed to learn a lot of things before I could get going with this system.", "How much upfront learning was required?"},
		),
	},
	{
		Name: metrics.InstrumentNASATLX, Title: "Cognitive Workload (NASA-TLX)",
		Min: 1, Max: 7, Default: 4,
		Items: []Item{
			{Key: "Mental Demand", Statement: "How mentally demanding was the task?"},
			{Key: "Physical Demand", Statement: "How physically demanding was the task?"},
			{Key: "Temporal Demand", Statement: "How hurried or rushed was the pace of the task?"},
			{Key: "Performance", Statement: "How successful were you in accomplishing what you were asked to do?", Tip: "Higher means more successful."},
			{Key: "Effort", Statement: "How hard did you have to work to accomplish your level of performance?"},
			{Key: "Frustration", Statement: "How insecure, discouraged, irritated, stressed were you?"},
		},
	},
	{
		Name: metrics.InstrumentTrust, Title: "Trust in the System",
		Min: 1, Max: 7, Default: 4,
		Items: numbered(
			[2]string{"The system is reliable.", ""},
			[2]string{"I can trust the information provided by the system.", ""},
			[2]string{"I am confident in the system's outputs.", ""},
			[2]string{"The system behaves in a predictable manner.", ""},
			[2]string{"I am comfortable relying on the system for my research tasks.", ""},
		),
	},
	{
		Name: metrics.InstrumentFatigue, Title: "Fatigue & Engagement",
		Min: 1, Max: 5, Default: 3,
		Items: numbered(
			[2]string{"I feel mentally fatigued after completing the tasks.", ""},
			[2]string{"I remained engaged throughout the session.", ""},
			[2]string{"I would be willing to use this tool again for literature review.", ""},
		),
	},
	{
		Name: metrics.InstrumentAIPreference, Title: "AI Feature Preferences",
		Min: 1, Max: 5, Default: 3, AIOnly: true,
		Items: numbered(
			[2]string{"The AI features helped me find relevant papers faster.", ""},
			[2]string{"I trusted the AI-generated summaries and insights.", ""},
			[2]string{"I would prefer using the AI-assisted mode over manual mode.", ""},
		),
	},
}

// InstrumentsFor returns the instruments offered to a participant;
// AI-only instruments are included when usedAI is set.
func InstrumentsFor(usedAI bool) []Instrument {
	var out []Instrument
	for _, in := range Instruments {
		if in.AIOnly && !usedAI {
			continue
		}
		out = append(out, in)
	}
	return out
}

// LookupInstrument finds an instrument by name, ignoring case and treating
// "-" as "_".
func LookupInstrument(name string) (Instrument, error) {
	norm := strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
	for _, in := range Instruments {
		if strings.EqualFold(norm, in.Name) {
			return in, nil
		}
	}
	return Instrument{}, fmt.Errorf("unknown survey instrument %q", name)
}
