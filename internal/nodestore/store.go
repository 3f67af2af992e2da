// Package nodestore defines the interface for storing the values produced by
// node output ports.
//
// # Why Node Store Exists
//
// The node store isolates **computed values** from the **append-only DAG
// structure** managed by topologystore. The same interface backs two different
// lifetimes:
//   - the pass-local store of one evaluation pass, created fresh and discarded
//     when the pass returns;
//   - one entry per batch of the activation cache, which survives across calls
//     until the cache is cleared.
//
// Values are keyed by nodeid.Handle, so equality is always by node identity and
// port, never by the value itself.
package nodestore

import (
	"context"

	"github.com/specialistvlad/nmgraph/internal/nodeid"
)

// Store is the interface for recording and looking up output-port values.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent reads and writes.
//
// # Typical Implementation
//
// See internal/inmemorystore for the reference in-memory implementation using
// sync.Map.
type Store interface {
	// Set records the value of one output port, replacing any previous value.
	Set(ctx context.Context, h nodeid.Handle, value any) error

	// Get returns the value recorded for a handle. The boolean is false if no
	// value was recorded; a recorded nil value is reported as present.
	Get(ctx context.Context, h nodeid.Handle) (any, bool)

	// Len returns the number of recorded handles.
	Len(ctx context.Context) int
}

// HasAll reports whether s holds a value for every handle.
func HasAll(ctx context.Context, s Store, handles []nodeid.Handle) bool {
	for _, h := range handles {
		if _, ok := s.Get(ctx, h); !ok {
			return false
		}
	}
	return true
}
