// Package taylor_net provides a polynomial model of one variable whose
// coefficients are learnable parameters.
package taylor_net

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/nmgraph/internal/checkpoint"
	"github.com/specialistvlad/nmgraph/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// Provider registers the "taylor_net" module type.
type Provider struct{}

// Input defines the arguments of a taylor_net module.
type Input struct {
	Dim int `hcl:"dim"`
	// Init sets the initial coefficients, lowest power first. Defaults to zeros.
	Init []float64 `hcl:"init,optional"`
}

// TaylorNet computes y = sum_k w[k] * x^k for k < Dim on every row of "x".
type TaylorNet struct {
	w *mat.Dense
}

var _ checkpoint.Stateful = (*TaylorNet)(nil)

// New creates a TaylorNet.
func New(in *Input) (*TaylorNet, error) {
	if in.Dim <= 0 {
		return nil, fmt.Errorf("dim must be positive, got %d", in.Dim)
	}
	w := mat.NewDense(1, in.Dim, nil)
	if in.Init != nil {
		if len(in.Init) != in.Dim {
			return nil, fmt.Errorf("init has %d coefficients, dim is %d", len(in.Init), in.Dim)
		}
		w.SetRow(0, in.Init)
	}
	return &TaylorNet{w: w}, nil
}

func (t *TaylorNet) InputPorts() []string  { return []string{"x"} }
func (t *TaylorNet) OutputPorts() []string { return []string{"y_pred"} }

// Coefficients returns a copy of the coefficients, lowest power first.
func (t *TaylorNet) Coefficients() []float64 {
	return mat.Row(nil, 0, t.w)
}

func (t *TaylorNet) Forward(_ context.Context, in map[string]any) (map[string]any, error) {
	x, err := tensor.AsDense(in["x"])
	if err != nil {
		return nil, fmt.Errorf("taylor_net: x: %w", err)
	}
	rows, cols := x.Dims()
	if cols != 1 {
		return nil, fmt.Errorf("taylor_net: x must have one column, got %d", cols)
	}

	_, dim := t.w.Dims()
	powers := mat.NewDense(rows, dim, nil)
	for i := 0; i < rows; i++ {
		p := 1.0
		for k := 0; k < dim; k++ {
			powers.Set(i, k, p)
			p *= x.At(i, 0)
		}
	}
	var y mat.Dense
	y.Mul(powers, t.w.T())
	return map[string]any{"y_pred": &y}, nil
}

func (t *TaylorNet) StateDict() map[string]*mat.Dense {
	return map[string]*mat.Dense{"weights": mat.DenseCopyOf(t.w)}
}

func (t *TaylorNet) LoadStateDict(state map[string]*mat.Dense) error {
	w, ok := state["weights"]
	if !ok {
		return errors.New("missing parameter 'weights'")
	}
	wr, wc := w.Dims()
	r, c := t.w.Dims()
	if wr != r || wc != c {
		return fmt.Errorf("weights shape %dx%d does not match %dx%d", wr, wc, r, c)
	}
	t.w.Copy(w)
	return nil
}
