// internal/nodeid/address.go
package nodeid

import (
	"fmt"
	"strings"
)

// String serializes the ID into its canonical path string representation.
func (id ID) String() string {
	return fmt.Sprintf("graph[%d].node[%d]", id.Graph, id.Seq)
}

// String serializes the Handle into its canonical path string representation.
func (h Handle) String() string {
	var sb strings.Builder
	sb.WriteString(h.Node.String())
	sb.WriteRune('.')
	sb.WriteString(h.Port)
	return sb.String()
}
