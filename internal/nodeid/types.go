// internal/nodeid/types.go
package nodeid

// ID is the identity of a node. Graph is the process-unique id of the graph
// the node belongs to; Seq is the node's creation index inside that graph.
type ID struct {
	Graph uint64
	Seq   int
}

// Handle identifies one output port of one node. Equality is by identity
// (node id + port), never by the value the port carries.
type Handle struct {
	Node ID
	Port string
}

// NewHandle creates a handle for the given node and port.
func NewHandle(id ID, port string) Handle {
	return Handle{Node: id, Port: port}
}

// Before reports whether the node was created before other in the same graph.
func (id ID) Before(other ID) bool {
	return id.Graph == other.Graph && id.Seq < other.Seq
}

// IsZero reports whether the handle is the zero value.
func (h Handle) IsZero() bool {
	return h == Handle{}
}
