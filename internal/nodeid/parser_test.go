// internal/nodeid/parser_test.go
package nodeid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		raw     string
		want    Handle
		wantErr string
	}{
		{raw: "graph[0].node[0].x", want: Handle{Node: ID{Graph: 0, Seq: 0}, Port: "x"}},
		{raw: "graph[42].node[3].mod_out", want: Handle{Node: ID{Graph: 42, Seq: 3}, Port: "mod_out"}},
		{raw: "", wantErr: "handle cannot be empty"},
		{raw: "graph[1].node[2]", wantErr: "must have the form"},
		{raw: "graph.node[2].x", wantErr: "first segment must be graph[G]"},
		{raw: "graph[1].nodes[2].x", wantErr: "second segment must be node[N]"},
		{raw: "graph[1].node[2].x[0]", wantErr: "port segment cannot carry an index"},
		{raw: "graph[1]..x", wantErr: "empty segment"},
		{raw: "graph[1].node[2].a b", wantErr: "invalid handle segment"},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			h, err := Parse(tc.raw)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, h)
			assert.Equal(t, tc.raw, h.String())
		})
	}
}

func TestHandle_TextRoundTrip(t *testing.T) {
	values := map[Handle]float64{
		NewHandle(ID{Graph: 1, Seq: 4}, "loss"): 0.5,
	}
	data, err := json.Marshal(values)
	require.NoError(t, err)
	assert.JSONEq(t, `{"graph[1].node[4].loss": 0.5}`, string(data))

	var back map[Handle]float64
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, values, back)
}
