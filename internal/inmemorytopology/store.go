package inmemorytopology

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/nmgraph/internal/node"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/topologystore"
)

// Store implements the topologystore.Store interface using maps and a mutex
// for thread-safe concurrent access.
type Store struct {
	mu    sync.RWMutex
	order []*node.Node
	nodes map[nodeid.ID]*node.Node
	deps  map[nodeid.ID]map[nodeid.ID]struct{} // Key: node ID, Value: set of dependency IDs
}

// New creates a new, empty in-memory topology store.
func New() topologystore.Store {
	return &Store{
		nodes: make(map[nodeid.ID]*node.Node),
		deps:  make(map[nodeid.ID]map[nodeid.ID]struct{}),
	}
}

// AddNode adds a new node to the store.
func (s *Store) AddNode(ctx context.Context, n *node.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[n.ID()]; exists {
		// Adding the same node twice is not an error, it's idempotent.
		return nil
	}
	s.nodes[n.ID()] = n
	s.order = append(s.order, n)
	return nil
}

// AddDependency creates a dependency link from one node to another.
func (s *Store) AddDependency(ctx context.Context, from, to nodeid.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[from]; !exists {
		return fmt.Errorf("dependency source node '%s' not found in topology", from)
	}
	if _, exists := s.nodes[to]; !exists {
		return fmt.Errorf("dependency target node '%s' not found in topology", to)
	}
	if !from.Before(to) {
		return fmt.Errorf("dependency from '%s' to '%s' does not point forward in creation order", from, to)
	}

	if s.deps[to] == nil {
		s.deps[to] = make(map[nodeid.ID]struct{})
	}
	s.deps[to][from] = struct{}{}
	return nil
}

// GetNode retrieves a single node by its ID.
func (s *Store) GetNode(ctx context.Context, id nodeid.ID) (*node.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	return n, ok
}

// AllNodes returns a slice of all nodes in creation order.
func (s *Store) AllNodes(ctx context.Context) []*node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]*node.Node(nil), s.order...)
}

// DependenciesOf returns the IDs of all nodes that the given node depends on.
func (s *Store) DependenciesOf(ctx context.Context, id nodeid.ID) ([]nodeid.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.nodes[id]; !exists {
		return nil, fmt.Errorf("node '%s' not found in topology", id)
	}

	depSet := s.deps[id]
	deps := make([]nodeid.ID, 0, len(depSet))
	for dep := range depSet {
		deps = append(deps, dep)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Seq < deps[j].Seq })
	return deps, nil
}

// Len returns the number of nodes in the topology.
func (s *Store) Len(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}
