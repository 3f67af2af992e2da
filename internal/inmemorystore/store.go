// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the nodestore.Store interface.
//
// # Concurrency Model
//
// Unlike inmemorytopology which uses RWMutex, this store uses sync.Map:
//   - **Write-Once Keys:** each handle is written once per pass or per batch
//   - **Independent Keys:** handles never need to be updated together
//
// sync.Map is optimized for this pattern where a key is written once and read
// many times afterwards.
package inmemorystore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/nodestore"
)

// Store is an in-memory implementation of nodestore.Store using sync.Map.
type Store struct {
	values sync.Map // Key: nodeid.Handle, Value: any
	count  atomic.Int64
}

// New creates a new, empty in-memory value store.
func New() nodestore.Store {
	return &Store{}
}

// Set records the value of an output port.
func (s *Store) Set(ctx context.Context, h nodeid.Handle, value any) error {
	if _, loaded := s.values.Swap(h, value); !loaded {
		s.count.Add(1)
	}
	return nil
}

// Get retrieves the value of an output port.
func (s *Store) Get(ctx context.Context, h nodeid.Handle) (any, bool) {
	return s.values.Load(h)
}

// Len returns the number of recorded handles.
func (s *Store) Len(ctx context.Context) int {
	return int(s.count.Load())
}
