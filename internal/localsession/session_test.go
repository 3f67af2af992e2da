package localsession

import (
	"testing"

	"github.com/specialistvlad/nmgraph/internal/cache"
	"github.com/specialistvlad/nmgraph/internal/dispatcher"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AddTenScenario(t *testing.T) {
	ctx, _ := testutil.Context(t)
	s, err := (&SessionFactory{}).NewSession(ctx)
	require.NoError(t, err)
	defer s.Close(ctx)

	g := s.Graph()
	src, err := g.Invoke(ctx, "zeros", testutil.NewSource(0.0), nil)
	require.NoError(t, err)
	ten := &testutil.AddConst{Value: 10}
	a1, err := g.Invoke(ctx, "ten", ten, map[string]nodeid.Handle{"mod_in": src[0]})
	require.NoError(t, err)
	a2, err := g.Invoke(ctx, "ten", ten, map[string]nodeid.Handle{"mod_in": a1[0]})
	require.NoError(t, err)
	a3, err := g.Invoke(ctx, "ten", ten, map[string]nodeid.Handle{"mod_in": a2[0]})
	require.NoError(t, err)

	res, err := s.Infer(ctx, dispatcher.InferConfig{Targets: []nodeid.Handle{a2[0], a3[0]}, Cache: true})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{20.0}, {30.0}}, res)

	sub, err := g.Invoke(ctx, "sub", &testutil.AddConst{Value: -10}, map[string]nodeid.Handle{"mod_in": a2[0]})
	require.NoError(t, err)
	res, err = s.Infer(ctx, dispatcher.InferConfig{Targets: sub, UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{10.0}}, res)
	assert.Equal(t, int32(3), ten.Calls.Load())

	s.ClearCache(ctx)
	assert.Equal(t, cache.StateDisabled, s.Cache().State())
}

func TestSession_GraphsAreIsolated(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := &SessionFactory{}
	s1, err := f.NewSession(ctx)
	require.NoError(t, err)
	s2, err := f.NewSession(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, s1.Graph().ID(), s2.Graph().ID())

	out, err := s1.Graph().Invoke(ctx, "zeros", testutil.NewSource(0.0), nil)
	require.NoError(t, err)
	_, err = s2.Infer(ctx, dispatcher.InferConfig{Targets: out})
	require.Error(t, err)
	assert.Empty(t, s2.StatefulModules(ctx))
	assert.NoError(t, s1.Close(ctx))
}
