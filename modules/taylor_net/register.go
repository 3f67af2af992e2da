package taylor_net

import "github.com/specialistvlad/nmgraph/internal/registry"

// Register registers the module type with the registry.
func (p *Provider) Register(r *registry.Registry) {
	r.Register("taylor_net", &registry.RegisteredModule{
		NewInput: func() any { return new(Input) },
		New: func(input any) (registry.Module, error) {
			return New(input.(*Input))
		},
	})
}
