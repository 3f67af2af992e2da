package config

import (
	"context"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter decodes the format-specific argument body of a module
// declaration into the Go input struct registered for its type.
type Converter interface {
	DecodeArguments(ctx context.Context, m *Module, input any) error
}
