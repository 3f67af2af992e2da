package mse_loss

import (
	"context"
	"testing"

	"github.com/specialistvlad/nmgraph/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMSELoss(t *testing.T) {
	ctx := context.Background()
	p := mat.NewDense(2, 1, []float64{1, 3})
	y := mat.NewDense(2, 1, []float64{0, 1})

	out, err := MSELoss{}.Forward(ctx, map[string]any{"predictions": p, "target": y})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, out["loss"], 1e-12)

	_, err = MSELoss{}.Forward(ctx, map[string]any{"predictions": p, "target": mat.NewDense(1, 1, nil)})
	assert.ErrorContains(t, err, "2x1 but target is 1x1")
}

func TestProvider_RegisterWithoutInput(t *testing.T) {
	r := registry.New()
	(&Provider{}).Register(r)
	require.NoError(t, r.Validate(context.Background()))

	m, err := r.Instantiate("mse_loss", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"predictions", "target"}, m.InputPorts())
}
