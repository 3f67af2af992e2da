package builder

import (
	"context"

	"github.com/specialistvlad/nmgraph/internal/cache"
	"github.com/specialistvlad/nmgraph/internal/graph"
	"github.com/specialistvlad/nmgraph/internal/node"
	"github.com/specialistvlad/nmgraph/internal/nodestore"
	"github.com/specialistvlad/nmgraph/internal/task"
)

// Builder transforms a graph node into a fully-resolved, executable task.
type Builder interface {
	// Build resolves every input of n from the pass-local values, then from the
	// cache view.
	Build(ctx context.Context, n *node.Node, values nodestore.Store, view cache.View) (*task.Task, error)
}

// DefaultBuilder is the reference implementation of the Builder interface.
type DefaultBuilder struct{}

// New creates a new default builder.
func New() Builder {
	return &DefaultBuilder{}
}

// Build resolves the inputs of n.
func (b *DefaultBuilder) Build(ctx context.Context, n *node.Node, values nodestore.Store, view cache.View) (*task.Task, error) {
	resolved := make(map[string]any, len(n.Inputs))
	for _, port := range n.InputPorts() {
		h := n.Inputs[port]
		if v, ok := values.Get(ctx, h); ok {
			resolved[port] = v
			continue
		}
		if v, ok := view.Lookup(ctx, h); ok {
			resolved[port] = v
			continue
		}
		return nil, &graph.MissingInputError{
			Handle:   h,
			Consumer: n.Name,
			Reason:   "value was neither computed in this pass nor found in the cache",
		}
	}
	return &task.Task{Node: n, ResolvedInputs: resolved}, nil
}
