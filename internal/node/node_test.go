package node

import (
	"context"
	"testing"

	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/stretchr/testify/assert"
)

type twoOut struct{ outs []string }

func (m *twoOut) InputPorts() []string  { return []string{"in"} }
func (m *twoOut) OutputPorts() []string { return m.outs }
func (m *twoOut) Forward(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}

func TestNode_PortsAreCopied(t *testing.T) {
	m := &twoOut{outs: []string{"a", "b"}}
	src := nodeid.NewHandle(nodeid.ID{Graph: 1, Seq: 0}, "x")
	inputs := map[string]nodeid.Handle{"in": src}

	n := New(nodeid.ID{Graph: 1, Seq: 1}, "two", m, inputs)
	m.outs[0] = "changed"
	inputs["in"] = nodeid.Handle{}

	assert.Equal(t, []string{"a", "b"}, n.OutputPorts())
	assert.Equal(t, src, n.Inputs["in"])
	assert.True(t, n.HasOutput("b"))
	assert.False(t, n.HasOutput("changed"))
}

func TestNode_Outputs(t *testing.T) {
	id := nodeid.ID{Graph: 3, Seq: 4}
	n := New(id, "two", &twoOut{outs: []string{"a", "b"}}, nil)

	assert.Equal(t, []nodeid.Handle{
		{Node: id, Port: "a"},
		{Node: id, Port: "b"},
	}, n.Outputs())
	assert.Equal(t, "two (graph[3].node[4])", n.String())
	assert.False(t, n.IsDataSource())
}
