package builder

import (
	"errors"
	"testing"

	"github.com/specialistvlad/nmgraph/internal/cache"
	"github.com/specialistvlad/nmgraph/internal/graph"
	"github.com/specialistvlad/nmgraph/internal/inmemorystore"
	"github.com/specialistvlad/nmgraph/internal/inmemorytopology"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New(inmemorytopology.New())
	src, err := g.Invoke(ctx, "src", testutil.NewSource(0.0), nil)
	require.NoError(t, err)
	out, err := g.Invoke(ctx, "ten", &testutil.AddConst{Value: 10}, map[string]nodeid.Handle{"mod_in": src[0]})
	require.NoError(t, err)
	n, err := g.NodeOf(ctx, out[0])
	require.NoError(t, err)

	b := New()

	t.Run("from pass-local values", func(t *testing.T) {
		values := inmemorystore.New()
		require.NoError(t, values.Set(ctx, src[0], 4.0))

		tk, err := b.Build(ctx, n, values, cache.View{})
		require.NoError(t, err)
		assert.Same(t, n, tk.Node)
		assert.Equal(t, map[string]any{"mod_in": 4.0}, tk.ResolvedInputs)
	})

	t.Run("from consuming cache", func(t *testing.T) {
		c := cache.New()
		require.NoError(t, c.Begin(ctx, cache.ModePopulate))
		require.NoError(t, c.Batch(0).Store(ctx, src[0], 7.0))
		c.Commit(ctx)
		require.NoError(t, c.Begin(ctx, cache.ModeConsume))

		tk, err := b.Build(ctx, n, inmemorystore.New(), c.Batch(0))
		require.NoError(t, err)
		assert.Equal(t, 7.0, tk.ResolvedInputs["mod_in"])
	})

	t.Run("unresolvable input", func(t *testing.T) {
		_, err := b.Build(ctx, n, inmemorystore.New(), cache.View{})
		var missing *graph.MissingInputError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, src[0], missing.Handle)
		assert.Equal(t, "ten", missing.Consumer)
	})
}
