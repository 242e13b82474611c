// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/litreview-study/pkg/types"
)

// NotApplicable is rendered for nil metrics.
const NotApplicable = "N/A"

// FormatTable writes a human-readable session report to w.
func FormatTable(m types.DerivedMetrics, w io.Writer) {
	fmt.Fprintln(w, "Efficiency")
	fmt.Fprintln(w, strings.Repeat("-", 48))
	row(w, "Task completion time", seconds(m.TaskCompletionTimeSeconds))
	row(w, "Search queries", fmt.Sprint(m.NumSearchQueries))
	row(w, "Keyword refinements", fmt.Sprint(m.NumKeywordRefinements))
	row(w, "Papers opened", fmt.Sprint(m.NumPapersOpened))
	row(w, "Papers selected", fmt.Sprint(m.NumPapersSelected))
	row(w, "Exploration depth", decimal(m.ExplorationDepth))
	row(w, "Deep Research link clicks", fmt.Sprint(m.NumDeepResearchLinkClicks))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "AI usage and trust")
	fmt.Fprintln(w, strings.Repeat("-", 48))
	row(w, "AI calls", fmt.Sprint(m.AICalls))
	row(w, "AI reliance ratio", percent(m.AIRelianceRatio))
	row(w, "AI outputs generated", fmt.Sprint(m.AIOutputsGenerated))
	row(w, "Source verification clicks", fmt.Sprint(m.SourceVerificationClicks))
	row(w, "Verification rate", percent(m.VerificationRate))
	row(w, "Deep Research runs", fmt.Sprint(m.DeepResearchRuns))
	row(w, "Deep Research verification", percent(m.DeepResearchVerificationRate))
	for _, feat := range sortedKeys(m.AIFeatureBreakdown) {
		row(w, "  feature "+feat, fmt.Sprint(m.AIFeatureBreakdown[feat]))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Surveys")
	fmt.Fprintln(w, strings.Repeat("-", 48))
	row(w, "SUS score (0-100)", decimal(m.SUSScore))
	row(w, "NASA-TLX mean (1-7)", decimal(m.NASATLXMean))
	row(w, "Trust mean (1-7)", decimal(m.TrustMean))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Time per condition and section")
	fmt.Fprintln(w, strings.Repeat("-", 48))
	conds := make([]string, 0, len(m.TimeMetrics))
	for c := range m.TimeMetrics {
		conds = append(conds, string(c))
	}
	sort.Strings(conds)
	for _, c := range conds {
		cond := types.Condition(c)
		row(w, cond.Short(), fmt.Sprintf("%.1fs", m.TotalTime(cond)))
		for _, sec := range sortedKeys(m.TimeMetrics[cond]) {
			row(w, "  "+sec, fmt.Sprintf("%.1fs", m.TimeMetrics[cond][sec]))
		}
	}
}

// FormatJSON writes the metrics as indented JSON to w. Nil metrics are
// written as null.
func FormatJSON(m types.DerivedMetrics, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-32s  %s\n", label, value)
}

func seconds(v *float64) string {
	if v == nil {
		return NotApplicable
	}
	return fmt.Sprintf("%.1fs", *v)
}

func decimal(v *float64) string {
	if v == nil {
		return NotApplicable
	}
	return fmt.Sprintf("%.2f", *v)
}

func percent(v *float64) string {
	if v == nil {
		return NotApplicable
	}
	return fmt.Sprintf("%.0f%%", *v*100)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
