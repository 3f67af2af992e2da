// Package config defines the format-agnostic pipeline model, along with the
// core interfaces (Loader, Converter) for loading and interpreting it from
// various sources.
//
// The `config.Model` is the single source of truth for the `pipeline`
// package. Concrete implementations of the interfaces, such as for HCL, are
// provided in separate packages.
package config
