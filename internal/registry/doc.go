// Package registry provides the central "glue" for the module system.
//
// It defines the contract every neural module implements (Module, DataSource)
// and the Registry that maps the module type names used in pipeline files
// (e.g., "add_const") to the Go constructors that build module instances.
//
// During application startup, the registry is populated by module providers and
// then validated so that every input struct can actually be decoded from HCL,
// preventing a wide class of runtime errors.
package registry
