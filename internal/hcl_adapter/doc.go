// Package hcl_adapter loads pipelines written in HCL into the
// format-agnostic config.Model and decodes module argument bodies into the
// registry's input structs.
package hcl_adapter
