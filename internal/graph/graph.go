package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/node"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/registry"
	"github.com/specialistvlad/nmgraph/internal/topologystore"
)

var nextGraphID atomic.Uint64

// Manager provides a high-level, thread-safe interface to the computation
// graph on top of a topology store.
type Manager struct {
	id       uint64
	mu       sync.Mutex
	topology topologystore.Store
}

// New creates a new graph manager with a fresh process-unique ID.
func New(ts topologystore.Store) Graph {
	return &Manager{
		id:       nextGraphID.Add(1),
		topology: ts,
	}
}

// ID returns the graph identifier.
func (m *Manager) ID() uint64 {
	return m.id
}

// Invoke validates the bindings and appends one node.
func (m *Manager) Invoke(ctx context.Context, name string, mod registry.Module, inputs map[string]nodeid.Handle) ([]nodeid.Handle, error) {
	if mod == nil {
		return nil, fmt.Errorf("invoke '%s': module is nil", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkBindings(ctx, name, mod, inputs); err != nil {
		return nil, err
	}

	id := nodeid.ID{Graph: m.id, Seq: m.topology.Len(ctx)}
	n := node.New(id, name, mod, inputs)
	if err := m.topology.AddNode(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to add node '%s': %w", name, err)
	}

	producers := make(map[nodeid.ID]struct{}, len(inputs))
	for _, h := range inputs {
		if _, seen := producers[h.Node]; seen {
			continue
		}
		producers[h.Node] = struct{}{}
		if err := m.topology.AddDependency(ctx, h.Node, id); err != nil {
			return nil, fmt.Errorf("failed to link node '%s': %w", name, err)
		}
	}

	ctxlog.FromContext(ctx).Debug("Node added to graph.", "node", name, "id", id.String(), "producers", len(producers))
	return n.Outputs(), nil
}

func (m *Manager) checkBindings(ctx context.Context, name string, mod registry.Module, inputs map[string]nodeid.Handle) error {
	bindErr := &PortBindingError{Node: name}
	declared := make(map[string]struct{})
	for _, port := range mod.InputPorts() {
		declared[port] = struct{}{}
		if _, ok := inputs[port]; !ok {
			bindErr.Missing = append(bindErr.Missing, port)
		}
	}
	for port, h := range inputs {
		if _, ok := declared[port]; !ok {
			bindErr.Unexpected = append(bindErr.Unexpected, port)
			continue
		}
		if _, err := m.nodeOf(ctx, h); err != nil {
			bindErr.Unknown = append(bindErr.Unknown, port)
		}
	}

	if len(bindErr.Missing) == 0 && len(bindErr.Unexpected) == 0 && len(bindErr.Unknown) == 0 {
		return nil
	}
	sort.Strings(bindErr.Missing)
	sort.Strings(bindErr.Unexpected)
	sort.Strings(bindErr.Unknown)
	return bindErr
}

// Node retrieves a node by ID.
func (m *Manager) Node(ctx context.Context, id nodeid.ID) (*node.Node, bool) {
	if id.Graph != m.id {
		return nil, false
	}
	return m.topology.GetNode(ctx, id)
}

// NodeOf returns the node producing the handle.
func (m *Manager) NodeOf(ctx context.Context, h nodeid.Handle) (*node.Node, error) {
	return m.nodeOf(ctx, h)
}

func (m *Manager) nodeOf(ctx context.Context, h nodeid.Handle) (*node.Node, error) {
	if h.Node.Graph != m.id {
		return nil, &MissingInputError{Handle: h, Reason: fmt.Sprintf("handle belongs to graph %d, not graph %d", h.Node.Graph, m.id)}
	}
	n, ok := m.topology.GetNode(ctx, h.Node)
	if !ok {
		return nil, &MissingInputError{Handle: h, Reason: "node does not exist"}
	}
	if !n.HasOutput(h.Port) {
		return nil, &MissingInputError{Handle: h, Reason: fmt.Sprintf("node '%s' has no output port '%s'", n.Name, h.Port)}
	}
	return n, nil
}

// DependenciesOf returns the producers of the node's inputs.
func (m *Manager) DependenciesOf(ctx context.Context, id nodeid.ID) ([]*node.Node, error) {
	ids, err := m.topology.DependenciesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	deps := make([]*node.Node, 0, len(ids))
	for _, depID := range ids {
		n, ok := m.topology.GetNode(ctx, depID)
		if !ok {
			return nil, fmt.Errorf("internal inconsistency: dependency '%s' of '%s' not found", depID, id)
		}
		deps = append(deps, n)
	}
	return deps, nil
}

// AllNodes returns every node in creation order.
func (m *Manager) AllNodes(ctx context.Context) []*node.Node {
	return m.topology.AllNodes(ctx)
}

// Len returns the number of nodes.
func (m *Manager) Len(ctx context.Context) int {
	return m.topology.Len(ctx)
}
