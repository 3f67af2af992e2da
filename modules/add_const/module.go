// Package add_const provides a module that adds a constant to its input.
package add_const

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nmgraph/internal/registry"
	"gonum.org/v1/gonum/mat"
)

// Provider registers the "add_const" module type.
type Provider struct{}

// Input defines the arguments of an add_const module.
type Input struct {
	Value float64 `hcl:"value"`
}

// AddConst adds Value to every element of "mod_in" and returns the result on
// "mod_out".
type AddConst struct {
	Value float64
}

func (a *AddConst) InputPorts() []string  { return []string{"mod_in"} }
func (a *AddConst) OutputPorts() []string { return []string{"mod_out"} }

func (a *AddConst) Forward(_ context.Context, in map[string]any) (map[string]any, error) {
	switch x := in["mod_in"].(type) {
	case float64:
		return map[string]any{"mod_out": x + a.Value}, nil
	case mat.Matrix:
		r, c := x.Dims()
		out := mat.NewDense(r, c, nil)
		out.Apply(func(i, j int, v float64) float64 { return v + a.Value }, x)
		return map[string]any{"mod_out": out}, nil
	default:
		return nil, fmt.Errorf("add_const: unsupported input type %T", x)
	}
}

// Register registers the module type with the registry.
func (p *Provider) Register(r *registry.Registry) {
	r.Register("add_const", &registry.RegisteredModule{
		NewInput: func() any { return new(Input) },
		New: func(input any) (registry.Module, error) {
			return &AddConst{Value: input.(*Input).Value}, nil
		},
	})
}
