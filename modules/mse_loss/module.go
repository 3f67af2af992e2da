// Package mse_loss provides the mean squared error between predictions and
// targets.
package mse_loss

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nmgraph/internal/registry"
	"github.com/specialistvlad/nmgraph/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// Provider registers the "mse_loss" module type.
type Provider struct{}

// MSELoss returns mean((predictions - target)^2) on "loss".
type MSELoss struct{}

func (MSELoss) InputPorts() []string  { return []string{"predictions", "target"} }
func (MSELoss) OutputPorts() []string { return []string{"loss"} }

func (MSELoss) Forward(_ context.Context, in map[string]any) (map[string]any, error) {
	p, err := tensor.AsDense(in["predictions"])
	if err != nil {
		return nil, fmt.Errorf("mse_loss: predictions: %w", err)
	}
	t, err := tensor.AsDense(in["target"])
	if err != nil {
		return nil, fmt.Errorf("mse_loss: target: %w", err)
	}
	pr, pc := p.Dims()
	tr, tc := t.Dims()
	if pr != tr || pc != tc {
		return nil, fmt.Errorf("mse_loss: predictions are %dx%d but target is %dx%d", pr, pc, tr, tc)
	}

	var diff mat.Dense
	diff.Sub(p, t)
	diff.MulElem(&diff, &diff)
	return map[string]any{"loss": mat.Sum(&diff) / float64(pr*pc)}, nil
}

// Register registers the module type with the registry.
func (p *Provider) Register(r *registry.Registry) {
	r.Register("mse_loss", &registry.RegisteredModule{
		New: func(any) (registry.Module, error) {
			return MSELoss{}, nil
		},
	})
}
