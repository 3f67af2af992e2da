package graph

import (
	"context"

	"github.com/specialistvlad/nmgraph/internal/node"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/registry"
)

// Graph is the append-only DAG of module invocations.
type Graph interface {
	// ID returns the process-unique identifier of the graph. Every handle the
	// graph returns carries it.
	ID() uint64

	// Invoke records one call of a module. Every declared input port must be
	// bound exactly once to an output handle of this graph; anything else
	// returns a *PortBindingError and leaves the graph unchanged.
	//
	// On success exactly one node is appended and one handle per declared output
	// port is returned, in declared order. Nothing is executed.
	Invoke(ctx context.Context, name string, m registry.Module, inputs map[string]nodeid.Handle) ([]nodeid.Handle, error)

	// Node retrieves a node by its ID.
	Node(ctx context.Context, id nodeid.ID) (*node.Node, bool)

	// NodeOf returns the node producing a handle, or a *MissingInputError when
	// the handle does not belong to a node and port of this graph.
	NodeOf(ctx context.Context, h nodeid.Handle) (*node.Node, error)

	// DependenciesOf returns the nodes that the given node directly consumes
	// outputs from, in creation order.
	DependenciesOf(ctx context.Context, id nodeid.ID) ([]*node.Node, error)

	// AllNodes returns every node in creation order.
	AllNodes(ctx context.Context) []*node.Node

	// Len returns the number of nodes.
	Len(ctx context.Context) int
}
