// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/litreview-study/pkg/types"
)

// extractionPromptTmpl asks the model for 3 to 4 keyword-set variants as a
// JSON array of arrays.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`You are a research librarian. Given the following research description, produce 3 to 4 diverse keyword sets that can be used to search academic databases. The first set should be direct keywords from the description. The remaining sets should be rephrased or synonym variants for broader coverage.

Return ONLY a JSON array of arrays. Each inner array is a list of keyword strings. Example: [["attention mechanism", "image segmentation"], ["self-attention", "semantic segmentation"]]

Research description: {{.Description}}`))

// relevancePromptTmpl asks for a single-line verdict starting with RELEVANT
// or NOT_RELEVANT.
var relevancePromptTmpl = template.Must(template.New("relevance").Parse(`You are an academic research assistant. Determine whether the following paper is relevant to the user's research description.

User's research description: {{.Description}}

Paper title: {{.Title}}
Paper abstract: {{.Abstract}}

Respond with EXACTLY one line starting with either RELEVANT or NOT_RELEVANT, followed by a brief reason. Example:
RELEVANT: This paper directly addresses attention mechanisms for segmentation.`))

func renderExtractionPrompt(description string) (string, error) {
	var buf bytes.Buffer
	err := extractionPromptTmpl.Execute(&buf, struct{ Description string }{description})
	return buf.String(), err
}

func renderRelevancePrompt(description string, p types.Paper) (string, error) {
	title := p.Title
	if title == "" {
		title = types.Untitled
	}
	abstract := p.Abstract
	if abstract == "" {
		abstract = types.NoAbstract
	}
	var buf bytes.Buffer
	err := relevancePromptTmpl.Execute(&buf, struct{ Description, Title, Abstract string }{description, title, abstract})
	return buf.String(), err
}
