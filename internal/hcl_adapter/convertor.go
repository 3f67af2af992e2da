package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/nmgraph/internal/config"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct {
	evalCtx *hcl.EvalContext
}

// NewConverter creates a new HCL converter evaluating arguments in evalCtx.
func NewConverter(evalCtx *hcl.EvalContext) *Converter {
	return &Converter{evalCtx: evalCtx}
}

// DecodeArguments decodes a module block body into input. A nil input means
// the module type takes no arguments, and any attribute is an error.
func (c *Converter) DecodeArguments(ctx context.Context, m *config.Module, input any) error {
	body, ok := m.Body.(hcl.Body)
	if !ok {
		return fmt.Errorf("module '%s': body is %T, not an HCL body", m.Name, m.Body)
	}
	ctxlog.FromContext(ctx).Debug("Decoding module arguments.", "module", m.Name, "type", m.Type)

	if input == nil {
		attrs, diags := body.JustAttributes()
		if diags.HasErrors() {
			return fmt.Errorf("module '%s': %w", m.Name, diags)
		}
		if len(attrs) > 0 {
			return fmt.Errorf("module '%s' at %s: type '%s' takes no arguments", m.Name, m.Source, m.Type)
		}
		return nil
	}

	if diags := gohcl.DecodeBody(body, c.evalCtx, input); diags.HasErrors() {
		return fmt.Errorf("module '%s': %w", m.Name, diags)
	}
	return nil
}
