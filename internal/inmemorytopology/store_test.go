package inmemorytopology

import (
	"context"
	"testing"

	"github.com/specialistvlad/nmgraph/internal/node"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type identity struct{}

func (identity) InputPorts() []string  { return nil }
func (identity) OutputPorts() []string { return []string{"out"} }
func (identity) Forward(context.Context, map[string]any) (map[string]any, error) {
	return map[string]any{"out": 0}, nil
}

func newNode(seq int) *node.Node {
	return node.New(nodeid.ID{Graph: 1, Seq: seq}, "n", identity{}, nil)
}

func TestAddAndGetNode(t *testing.T) {
	s := New()
	ctx := context.Background()
	testNode := newNode(0)

	err := s.AddNode(ctx, testNode)
	require.NoError(t, err)
	// Idempotent.
	require.NoError(t, s.AddNode(ctx, testNode))

	retrievedNode, ok := s.GetNode(ctx, testNode.ID())
	require.True(t, ok)
	assert.Same(t, testNode, retrievedNode)
	assert.Equal(t, 1, s.Len(ctx))

	_, ok = s.GetNode(ctx, nodeid.ID{Graph: 2, Seq: 0})
	assert.False(t, ok)
}

func TestAllNodes_CreationOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.AddNode(ctx, newNode(i)))
	}

	nodes := s.AllNodes(ctx)
	require.Len(t, nodes, 5)
	for i, n := range nodes {
		assert.Equal(t, i, n.ID().Seq)
	}
}

func TestDependencies(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, b, c := newNode(0), newNode(1), newNode(2)
	require.NoError(t, s.AddNode(ctx, a))
	require.NoError(t, s.AddNode(ctx, b))
	require.NoError(t, s.AddNode(ctx, c))

	// c depends on b and a.
	require.NoError(t, s.AddDependency(ctx, b.ID(), c.ID()))
	require.NoError(t, s.AddDependency(ctx, a.ID(), c.ID()))

	deps, err := s.DependenciesOf(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, []nodeid.ID{a.ID(), b.ID()}, deps)

	deps, err = s.DependenciesOf(ctx, a.ID())
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestAddDependency_Errors(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, b := newNode(0), newNode(1)
	require.NoError(t, s.AddNode(ctx, a))
	require.NoError(t, s.AddNode(ctx, b))

	err := s.AddDependency(ctx, b.ID(), a.ID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not point forward")

	err = s.AddDependency(ctx, a.ID(), a.ID())
	require.Error(t, err)

	err = s.AddDependency(ctx, nodeid.ID{Graph: 1, Seq: 9}, b.ID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency source node")

	_, err = s.DependenciesOf(ctx, nodeid.ID{Graph: 1, Seq: 9})
	require.Error(t, err)
}
