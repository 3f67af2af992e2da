package add_const

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAddConst_Forward(t *testing.T) {
	ctx := context.Background()
	a := &AddConst{Value: 10}

	out, err := a.Forward(ctx, map[string]any{"mod_in": 5.0})
	require.NoError(t, err)
	assert.Equal(t, 15.0, out["mod_out"])

	in := mat.NewDense(2, 1, []float64{0, 1})
	out, err = a.Forward(ctx, map[string]any{"mod_in": in})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11}, out["mod_out"].(*mat.Dense).RawMatrix().Data)
	assert.Equal(t, []float64{0, 1}, in.RawMatrix().Data)

	_, err = a.Forward(ctx, map[string]any{"mod_in": "x"})
	assert.ErrorContains(t, err, "unsupported input type string")
}
