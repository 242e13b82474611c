// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package study

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/pdiddy/litreview-study/pkg/types"
)

// Task is one study assignment with its completion criteria and the sample
// topics a participant may be given.
type Task struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Objective string   `json:"objective" yaml:"objective"`
	Criteria  []string `json:"criteria" yaml:"criteria"`
	Samples   []string `json:"samples" yaml:"samples"`
}

// Label is the task identifier written to task_id, e.g.
// "T1 (Targeted Literature Search)".
func (t Task) Label() string {
	return fmt.Sprintf("%s (%s)", t.ID, t.Name)
}

// PickSample returns a random sample topic.
func (t Task) PickSample() string {
	if len(t.Samples) == 0 {
		return ""
	}
	return t.Samples[rand.IntN(len(t.Samples))]
}

// Tasks is the study task catalogue.
var Tasks = []Task{
	{
		ID:        "T1",
		Name:      "Targeted Literature Search",
		Objective: "Find and synthesize relevant papers on a specific topic.",
		Criteria: []string{
			"Find at least 3-5 highly relevant papers on the given topic.",
			"Add the chosen papers to your Knowledge Base.",
			"Review the selected papers.",
			"Submit a brief literature overview of your findings.",
		},
		Samples: []string{
			"Application of Large Language/Vision Models in Medical Image Diagnostics.",
			"The impact of climate change on coastal urban infrastructure and mitigation strategies.",
			"Reinforcement learning algorithms (e.g., PPO, SAC) applied to robotic manipulation.",
			"Energy-efficient consensus mechanisms in emerging blockchain networks.",
			"Microplastics pollution in marine ecosystems and its measurable effect on local aquatic life.",
		},
	},
	{
		ID:        "T2",
		Name:      "Deep Understanding of a Topic",
		Objective: "Thoroughly analyze literature to extract deep insights, limitations, and keywords.",
		Criteria: []string{
			"Find 1-3 highly technical papers on the specific topic and add them to your Knowledge Base.",
			"Deeply analyze the methodologies and results presented.",
			"Identify the main research gaps or future directions.",
			"Submit the Research Gaps and at least 5 relevant Keywords.",
		},
		Samples: []string{
			"Vision Transformers (ViT): How their self-attention mechanisms compare to traditional CNNs in feature extraction.",
			"CRISPR-Cas9 gene editing: Current challenges with off-target mutation rates and proposed mitigation strategies.",
			"Quantum error correction: The role of Surface Codes in building scalable topological quantum computers.",
			"Universal Basic Income (UBI): Analyzing the macroeconomic implications and inflation effects in pilot programs.",
			"Solid-state battery technology: Current material challenges in improving lithium-ion conductivity through solid electrolytes.",
		},
	},
}

// LookupTask finds a task by id ("T1") or by a label beginning with the id.
func LookupTask(s string) (Task, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, t := range Tasks {
		if s == t.ID || strings.HasPrefix(s, t.ID+" ") {
			return t, nil
		}
	}
	return Task{}, fmt.Errorf("unknown task %q: want one of T1, T2", s)
}

var tutorials = map[types.Condition][]string{
	types.ConditionManual: {
		"Search Online: enter keywords to query the search service and discover real academic papers.",
		"Papers (Knowledge Base): view the papers you have collected and filter them by year, author, or keyword.",
		"Analytics/Keywords: see publication trends over time and the most common keywords in your collection.",
		"Summary: submit your final findings (Summary, Gaps, Keywords) to complete the task.",
	},
	types.ConditionAI: {
		"Search Online: standard keyword search to build your initial knowledge base.",
		"Paper Chat: select a specific paper and ask the AI direct questions about its methodology, results, or limitations.",
		"AI Summary: select multiple papers to generate literature overviews, methodology comparisons, or key findings.",
		"Research Insights: run a thematic analysis across multiple papers or get suggestions for how to cite them together.",
		"Deep Research: describe what you are looking for in natural language. The AI extracts keywords, searches online, removes duplicates, and filters papers by relevance.",
	},
}

// Tutorial returns the tool introduction shown for condition.
func Tutorial(c types.Condition) []string {
	if t, ok := tutorials[c]; ok {
		return t
	}
	return tutorials[types.ConditionManual]
}
