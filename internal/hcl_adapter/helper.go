package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/nmgraph/internal/config"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional expression fields with
// zero-width placeholder expressions, so a nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	isDefined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// refFromExpr parses a `call.<name>.<port>` traversal.
func refFromExpr(expr hcl.Expression) (config.Ref, error) {
	trav, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() {
		return config.Ref{}, fmt.Errorf("%s: expected a reference like call.<name>.<port>", expr.Range())
	}
	if len(trav) != 3 || trav.RootName() != "call" {
		return config.Ref{}, fmt.Errorf("%s: expected a reference like call.<name>.<port>", expr.Range())
	}
	name, ok := trav[1].(hcl.TraverseAttr)
	if !ok {
		return config.Ref{}, fmt.Errorf("%s: call name must be an attribute, not an index", expr.Range())
	}
	port, ok := trav[2].(hcl.TraverseAttr)
	if !ok {
		return config.Ref{}, fmt.Errorf("%s: port must be an attribute, not an index", expr.Range())
	}
	return config.Ref{Call: name.Name, Port: port.Name}, nil
}

// refsFromExpr parses a list of references.
func refsFromExpr(expr hcl.Expression, attrName string) ([]config.Ref, error) {
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: '%s' must be a list of references: %w", expr.Range(), attrName, diags)
	}
	refs := make([]config.Ref, 0, len(items))
	for _, item := range items {
		ref, err := refFromExpr(item)
		if err != nil {
			return nil, fmt.Errorf("in '%s': %w", attrName, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// inputsFromExpr parses an object mapping input port names to references.
func inputsFromExpr(expr hcl.Expression) (map[string]config.Ref, error) {
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: 'inputs' must be an object: %w", expr.Range(), diags)
	}
	inputs := make(map[string]config.Ref, len(pairs))
	for _, kv := range pairs {
		key, diags := kv.Key.Value(nil)
		if diags.HasErrors() || key.IsNull() || !key.Type().Equals(cty.String) {
			return nil, fmt.Errorf("%s: input port names must be identifiers or strings", kv.Key.Range())
		}
		port := key.AsString()
		if _, dup := inputs[port]; dup {
			return nil, fmt.Errorf("%s: input port '%s' bound twice", kv.Key.Range(), port)
		}
		ref, err := refFromExpr(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("input '%s': %w", port, err)
		}
		inputs[port] = ref
	}
	return inputs, nil
}
