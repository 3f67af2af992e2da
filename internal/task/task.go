package task

import "github.com/specialistvlad/nmgraph/internal/node"

// Task represents a node that is fully prepared for execution.
// It is the output of a builder.Builder and the input for the module's
// Forward call.
type Task struct {
	// Node is the original node definition from the graph.
	Node *node.Node

	// ResolvedInputs contains one value per declared input port, with every
	// bound handle resolved to its value for the current pass.
	ResolvedInputs map[string]any
}
