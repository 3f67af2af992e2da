package graph

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/nmgraph/internal/nodeid"
)

// PortBindingError is returned by Invoke when the supplied inputs do not match
// the module's declared input ports.
type PortBindingError struct {
	// Node is the instance name that was being invoked.
	Node string
	// Missing lists declared input ports that were not bound.
	Missing []string
	// Unexpected lists bound names that are not declared input ports.
	Unexpected []string
	// Unknown lists ports bound to handles that are not outputs of this graph.
	Unknown []string
}

func (e *PortBindingError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing [%s]", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected [%s]", strings.Join(e.Unexpected, ", ")))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("bound to unknown handles [%s]", strings.Join(e.Unknown, ", ")))
	}
	return fmt.Sprintf("invalid port bindings for '%s': %s", e.Node, strings.Join(parts, "; "))
}

// MissingInputError is returned when a value needed by an evaluation pass
// cannot be resolved: the handle is unknown to the graph, it was never fed or
// computed, or it belongs to another graph.
type MissingInputError struct {
	Handle nodeid.Handle
	// Consumer is the node that needed the value, if any.
	Consumer string
	Reason   string
}

func (e *MissingInputError) Error() string {
	if e.Consumer != "" {
		return fmt.Sprintf("missing input '%s' for '%s': %s", e.Handle, e.Consumer, e.Reason)
	}
	return fmt.Sprintf("missing input '%s': %s", e.Handle, e.Reason)
}
