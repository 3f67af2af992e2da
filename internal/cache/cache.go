package cache

import (
	"context"
	"sync"

	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/inmemorystore"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/nodestore"
)

// Cache holds one value store per batch plus the lifecycle state.
type Cache struct {
	mu       sync.Mutex
	state    State
	mode     Mode
	batches  []nodestore.Store
	newStore func() nodestore.Store
}

// New creates a disabled cache backed by in-memory stores.
func New() *Cache {
	return NewWithStore(inmemorystore.New)
}

// NewWithStore creates a disabled cache whose per-batch entries are created by
// newStore.
func NewWithStore(newStore func() nodestore.Store) *Cache {
	return &Cache{newStore: newStore}
}

// Begin starts a call in the given mode.
//
// ModeNone never changes the state. ModePopulate requires an empty cache and
// moves it to Populating. ModeConsume requires at least one recorded batch and
// moves the cache to Consuming, where it stays for further consuming calls.
func (c *Cache) Begin(ctx context.Context, mode Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch mode {
	case ModeNone:
		c.mode = ModeNone
		return nil
	case ModePopulate:
		if c.state != StateDisabled {
			return &StateError{State: c.state, Msg: "cache was set but was not empty"}
		}
		c.state = StatePopulating
		c.batches = nil
	case ModeConsume:
		switch c.state {
		case StateDisabled:
			return &StateError{State: c.state, Msg: "use_cache was set, but cache was empty"}
		case StatePopulating:
			return &StateError{State: c.state, Msg: "use_cache was set while the cache is still being populated"}
		}
		if len(c.batches) == 0 {
			return &StateError{State: c.state, Msg: "use_cache was set, but cache was empty"}
		}
		c.state = StateConsuming
	}
	c.mode = mode
	ctxlog.FromContext(ctx).Debug("Cache call started.", "mode", mode.String(), "state", c.state.String())
	return nil
}

// Batch returns the view for batch i of the current call.
//
// While populating, asking for the next unseen index appends a fresh entry.
// While consuming, an index beyond the recorded batches yields an empty view.
func (c *Cache) Batch(i int) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModePopulate:
		for len(c.batches) <= i {
			c.batches = append(c.batches, c.newStore())
		}
		return View{mode: ModePopulate, store: c.batches[i]}
	case ModeConsume:
		if i < 0 || i >= len(c.batches) {
			return View{mode: ModeConsume}
		}
		return View{mode: ModeConsume, store: c.batches[i]}
	default:
		return View{}
	}
}

// Commit ends a successful call. A populating cache becomes Populated, or
// Disabled when the call recorded no batch; other states are unchanged.
func (c *Cache) Commit(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StatePopulating {
		if len(c.batches) == 0 {
			c.state = StateDisabled
			ctxlog.FromContext(ctx).Warn("Cache call recorded no batches, leaving the cache empty.")
		} else {
			c.state = StatePopulated
			ctxlog.FromContext(ctx).Debug("Cache populated.", "batches", len(c.batches))
		}
	}
	c.mode = ModeNone
}

// Abort ends a failed call. A populating cache is cleared so partial entries
// can never be consumed; other states are unchanged.
func (c *Cache) Abort(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StatePopulating {
		ctxlog.FromContext(ctx).Warn("Discarding partially populated cache.", "batches", len(c.batches))
		c.state = StateDisabled
		c.batches = nil
	}
	c.mode = ModeNone
}

// Clear drops every entry and returns the cache to Disabled. It is idempotent.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDisabled {
		ctxlog.FromContext(ctx).Debug("Cache cleared.", "from", c.state.String())
	}
	c.state = StateDisabled
	c.mode = ModeNone
	c.batches = nil
}

// State returns the current lifecycle state.
func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Batches returns the number of recorded batches.
func (c *Cache) Batches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

// View is the per-batch window of a cache that one evaluation pass sees. The
// zero View is disabled: it never stores and never finds anything.
type View struct {
	mode  Mode
	store nodestore.Store
}

// Mode returns the mode of the call the view belongs to.
func (v View) Mode() Mode {
	return v.mode
}

// Consuming reports whether the view serves recorded values.
func (v View) Consuming() bool {
	return v.mode == ModeConsume
}

// Lookup returns a recorded value. It only finds values while consuming.
func (v View) Lookup(ctx context.Context, h nodeid.Handle) (any, bool) {
	if v.mode != ModeConsume || v.store == nil {
		return nil, false
	}
	return v.store.Get(ctx, h)
}

// HasAll reports whether every handle has a recorded value.
func (v View) HasAll(ctx context.Context, handles []nodeid.Handle) bool {
	if v.mode != ModeConsume || v.store == nil {
		return false
	}
	return nodestore.HasAll(ctx, v.store, handles)
}

// Store records a value. It is a no-op unless populating.
func (v View) Store(ctx context.Context, h nodeid.Handle, value any) error {
	if v.mode != ModePopulate || v.store == nil {
		return nil
	}
	return v.store.Set(ctx, h, value)
}
