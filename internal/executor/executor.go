// Package executor defines the interface for the graph evaluation engine.
package executor

import (
	"context"

	"github.com/specialistvlad/nmgraph/internal/cache"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
)

// Request describes one evaluation pass.
type Request struct {
	// Targets are the output handles whose values are requested.
	Targets []nodeid.Handle
	// Feed holds the current batch of every data-source node in the closure,
	// keyed by node ID and then by output port.
	Feed map[nodeid.ID]map[string]any
	// Cache is the activation cache view for this batch. The zero view
	// disables caching.
	Cache cache.View
}

// Executor runs evaluation passes over a graph.
type Executor interface {
	// Evaluate computes exactly the requested targets, running only their
	// upstream closure in topological order. Errors returned by a module's
	// Forward are passed through unchanged.
	Evaluate(ctx context.Context, req *Request) (map[nodeid.Handle]any, error)
}
