// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperIDMarshalJSON(t *testing.T) {
	tests := []struct {
		id   PaperID
		want string
	}{
		{"12", `12`},
		{"0", `0`},
		{"-3", `-3`},
		{"007", `"007"`},
		{"+5", `"+5"`},
		{"W2741809807", `"W2741809807"`},
		{"", `""`},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			data, err := json.Marshal(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back PaperID
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.id, back)
		})
	}
}
