// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview-study/pkg/types"
)

func TestToCSLItem(t *testing.T) {
	p := types.Paper{
		ID:       "7",
		Title:    "Attention Is All You Need",
		Authors:  []string{"Ashish Vaswani", "Shazeer, Noam"},
		Year:     2017,
		Journal:  "NeurIPS",
		Volume:   "30",
		Pages:    "5998-6008",
		Abstract: "The dominant sequence transduction models...",
		Keywords: []string{"transformers", "attention"},
	}

	item := ToCSLItem(p)

	assert.Equal(t, "ref7", item.ID)
	assert.Equal(t, "article-journal", item.Type)
	assert.Equal(t, "NeurIPS", item.ContainerTitle)
	assert.Equal(t, "30", item.Volume)
	assert.Equal(t, "5998-6008", item.Page)
	assert.Equal(t, "transformers, attention", item.Keyword)
	require.Len(t, item.Author, 2)
	assert.Equal(t, CSLName{Given: "Ashish", Family: "Vaswani"}, item.Author[0])
	assert.Equal(t, CSLName{Given: "Noam", Family: "Shazeer"}, item.Author[1])
	require.NotNil(t, item.Issued)
	assert.Equal(t, [][]int{{2017}}, item.Issued.DateParts)
}

func TestToCSLItemPrefersDOI(t *testing.T) {
	item := ToCSLItem(types.Paper{ID: "abc123", Title: "X", DOI: "10.1000/xyz"})
	assert.Equal(t, "10.1000/xyz", item.ID)
	assert.Equal(t, "10.1000/xyz", item.DOI)

	item = ToCSLItem(types.Paper{ID: "abc123", Title: "X"})
	assert.Equal(t, "abc123", item.ID)
}

func TestToCSLItemDropsSentinels(t *testing.T) {
	item := ToCSLItem(types.Paper{Title: "X", Journal: types.UnknownVenue, Abstract: types.NoAbstract})
	assert.Empty(t, item.ContainerTitle)
	assert.Empty(t, item.Abstract)
	assert.Nil(t, item.Issued)
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want CSLName
	}{
		{"", CSLName{}},
		{"Plato", CSLName{Literal: "Plato"}},
		{"Ada Lovelace", CSLName{Given: "Ada", Family: "Lovelace"}},
		{"Jean Paul Sartre", CSLName{Given: "Jean Paul", Family: "Sartre"}},
		{"Hopper, Grace", CSLName{Given: "Grace", Family: "Hopper"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAuthorName(tt.in))
		})
	}
}

func TestFormatCSL(t *testing.T) {
	var buf bytes.Buffer
	err := FormatCSL([]types.Paper{
		{ID: "1", Title: "First", Authors: []string{"A B"}, Year: 2020},
		{ID: "2", Title: "Second"},
	}, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "id: ref1")
	assert.Contains(t, out, "title: First")
	assert.Contains(t, out, "date-parts:")
	assert.Equal(t, 2, strings.Count(out, "type: article-journal"))
}
