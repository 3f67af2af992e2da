package node

import (
	"fmt"

	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/registry"
)

// Node is a single vertex in the computation graph: one invocation of a
// module with its inputs bound to outputs of earlier nodes.
//
// A Node is immutable once created by the graph.
type Node struct {
	// id is the unique, structured identifier for the node.
	id nodeid.ID
	// Name is the human-readable instance name of the invoked module.
	// Example: "addten"
	Name string
	// Module is the module instance invoked by this node. Several nodes may
	// share the same instance.
	Module registry.Module
	// Inputs maps each declared input port to the handle bound to it.
	Inputs map[string]nodeid.Handle

	inputPorts  []string
	outputPorts []string
}

// New creates a node. Port lists are copied from the module so later changes
// to the module cannot alter the graph.
func New(id nodeid.ID, name string, m registry.Module, inputs map[string]nodeid.Handle) *Node {
	bound := make(map[string]nodeid.Handle, len(inputs))
	for port, h := range inputs {
		bound[port] = h
	}
	return &Node{
		id:          id,
		Name:        name,
		Module:      m,
		Inputs:      bound,
		inputPorts:  append([]string(nil), m.InputPorts()...),
		outputPorts: append([]string(nil), m.OutputPorts()...),
	}
}

// ID returns the structured identifier of the node.
func (n *Node) ID() nodeid.ID {
	return n.id
}

// InputPorts returns the declared input ports in declaration order.
func (n *Node) InputPorts() []string {
	return append([]string(nil), n.inputPorts...)
}

// OutputPorts returns the declared output ports in declaration order.
func (n *Node) OutputPorts() []string {
	return append([]string(nil), n.outputPorts...)
}

// HasOutput reports whether the node declares the given output port.
func (n *Node) HasOutput(port string) bool {
	for _, p := range n.outputPorts {
		if p == port {
			return true
		}
	}
	return false
}

// Output returns the handle of one output port.
func (n *Node) Output(port string) nodeid.Handle {
	return nodeid.NewHandle(n.id, port)
}

// Outputs returns one handle per declared output port, in declared order.
func (n *Node) Outputs() []nodeid.Handle {
	handles := make([]nodeid.Handle, 0, len(n.outputPorts))
	for _, p := range n.outputPorts {
		handles = append(handles, n.Output(p))
	}
	return handles
}

// IsDataSource reports whether the node's module is a data source.
func (n *Node) IsDataSource() bool {
	return registry.IsDataSource(n.Module)
}

// String returns a readable description for logs and errors.
func (n *Node) String() string {
	return fmt.Sprintf("%s (%s)", n.Name, n.id)
}
