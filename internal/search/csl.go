// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview-study/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form.
// Field names follow the CSL-YAML schema so Pandoc and reference managers
// can consume the output.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Keyword        string    `yaml:"keyword,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date in CSL form using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes papers as a CSL-YAML list to w.
func FormatCSL(papers []types.Paper, w io.Writer) error {
	items := make([]CSLItem, len(papers))
	for i, p := range papers {
		items[i] = ToCSLItem(p)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// ToCSLItem converts a paper to a CSL entry. Sentinel values for missing
// venue and abstract are omitted.
func ToCSLItem(p types.Paper) CSLItem {
	item := CSLItem{
		ID:      cslID(p),
		Type:    "article-journal",
		Title:   p.Title,
		Volume:  string(p.Volume),
		Issue:   string(p.Issue),
		Page:    string(p.Pages),
		DOI:     p.DOI,
		URL:     p.URL,
		Keyword: strings.Join(p.Keywords, ", "),
	}
	if p.Journal != types.UnknownVenue {
		item.ContainerTitle = p.Journal
	}
	if p.Abstract != types.NoAbstract {
		item.Abstract = p.Abstract
	}
	for _, a := range p.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}
	if p.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{p.Year}}}
	}
	return item
}

// cslID prefers the DOI, then the paper id.
func cslID(p types.Paper) string {
	switch {
	case p.DOI != "":
		return p.DOI
	case p.ID != "":
		if n, ok := p.ID.IntID(); ok {
			return "ref" + strconv.Itoa(n)
		}
		return string(p.ID)
	default:
		return ""
	}
}

// parseAuthorName splits a full name into CSL family/given parts. It accepts
// "Given Family" and "Family, Given"; single-token names use the literal
// field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return CSLName{Family: strings.TrimSpace(family), Given: strings.TrimSpace(given)}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
