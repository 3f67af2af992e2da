package registry

import (
	"fmt"
	"log/slog"
	"sort"
)

// Provider is implemented by module packages so they can register their
// module types with a Registry.
type Provider interface {
	Register(r *Registry)
}

// RegisteredModule holds the compiled Go parts of one module type.
type RegisteredModule struct {
	// NewInput returns a pointer to a fresh, zero-valued input struct that the
	// HCL converter decodes module arguments into. Nil means the module takes
	// no arguments.
	NewInput func() any
	// New builds a module instance from a decoded input struct.
	New func(input any) (Module, error)
}

// Registry holds all registered module types for a single application instance.
type Registry struct {
	modules map[string]*RegisteredModule
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		modules: make(map[string]*RegisteredModule),
	}
}

// Register registers the constructor for a module type.
func (r *Registry) Register(moduleType string, m *RegisteredModule) {
	if _, exists := r.modules[moduleType]; exists {
		panic(fmt.Sprintf("module type '%s' already registered", moduleType))
	}
	slog.Debug("Registering module type.", "type", moduleType)
	r.modules[moduleType] = m
}

// Lookup returns the registration for a module type.
func (r *Registry) Lookup(moduleType string) (*RegisteredModule, bool) {
	m, ok := r.modules[moduleType]
	return m, ok
}

// Types returns the registered module type names in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.modules))
	for t := range r.modules {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Instantiate builds a module of the given type from an already decoded input.
func (r *Registry) Instantiate(moduleType string, input any) (Module, error) {
	m, ok := r.Lookup(moduleType)
	if !ok {
		return nil, fmt.Errorf("unknown module type '%s'", moduleType)
	}
	mod, err := m.New(input)
	if err != nil {
		return nil, fmt.Errorf("module type '%s': %w", moduleType, err)
	}
	return mod, nil
}
