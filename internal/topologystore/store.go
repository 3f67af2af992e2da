// Package topologystore defines the interface for storing and retrieving the
// static structure of the computation graph (DAG).
//
// # Why Topology Store Exists
//
// The topology store isolates the **append-only DAG structure** (nodes and their
// dependency relationships) from the **values** computed during an evaluation
// pass, which live in a nodestore.Store.
//
// # Lifecycle and Usage
//
// The topology store is:
//  1. **Created** once per graph
//  2. **Appended to** by graph.Invoke (one node, then its edges)
//  3. **Queried** by the scheduler and the executor on every evaluation pass
//
// Nodes are never removed or modified.
package topologystore

import (
	"context"

	"github.com/specialistvlad/nmgraph/internal/node"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
)

// Store is the interface for managing the topology of a computation DAG.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent reads and writes. The engine
// builds and evaluates from a single goroutine, but callbacks and the health
// check may query the graph at the same time.
//
// # Typical Implementation
//
// See internal/inmemorytopology for the reference in-memory implementation.
type Store interface {
	// AddNode registers a new node in the topology.
	//
	// Adding the same node twice (by ID) is idempotent and does not return an error.
	AddNode(ctx context.Context, n *node.Node) error

	// AddDependency records that the node 'to' consumes an output of 'from'.
	//
	// Both nodes must already exist and 'from' must have been created before
	// 'to'; otherwise an error is returned. This keeps every edge pointing from
	// an earlier node to a later one, so the graph can never contain a cycle.
	AddDependency(ctx context.Context, from, to nodeid.ID) error

	// GetNode retrieves a single node by its ID.
	GetNode(ctx context.Context, id nodeid.ID) (*node.Node, bool)

	// AllNodes returns all nodes in creation order. The returned slice is a
	// snapshot that is safe for the caller to iterate.
	AllNodes(ctx context.Context) []*node.Node

	// DependenciesOf returns the IDs of the nodes that 'id' directly depends on,
	// in creation order. It returns an error if 'id' is unknown.
	DependenciesOf(ctx context.Context, id nodeid.ID) ([]nodeid.ID, error)

	// Len returns the number of nodes.
	Len(ctx context.Context) int
}
