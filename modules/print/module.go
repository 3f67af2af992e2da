// Package print provides a pass-through module that logs every value it sees.
package print

import (
	"context"

	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/registry"
	"github.com/specialistvlad/nmgraph/internal/tensor"
)

// Provider registers the "print" module type.
type Provider struct{}

// Input defines the arguments of a print module.
type Input struct {
	Label string `hcl:"label,optional"`
}

// Print forwards "value" unchanged and logs it at info level.
type Print struct {
	Label string
}

func (p *Print) InputPorts() []string  { return []string{"value"} }
func (p *Print) OutputPorts() []string { return []string{"value"} }

func (p *Print) Forward(ctx context.Context, in map[string]any) (map[string]any, error) {
	v := in["value"]
	ctxlog.FromContext(ctx).Info("Printing input", "label", p.Label, "value", tensor.Format(v))
	return map[string]any{"value": v}, nil
}

// Register registers the module type with the registry.
func (p *Provider) Register(r *registry.Registry) {
	r.Register("print", &registry.RegisteredModule{
		NewInput: func() any { return new(Input) },
		New: func(input any) (registry.Module, error) {
			return &Print{Label: input.(*Input).Label}, nil
		},
	})
}
