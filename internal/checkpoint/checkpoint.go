package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrNotFound is returned by Store.Latest when no snapshot exists.
var ErrNotFound = errors.New("no checkpoint found")

// Stateful is implemented by modules with trainable parameters.
type Stateful interface {
	StateDict() map[string]*mat.Dense
	LoadStateDict(state map[string]*mat.Dense) error
}

// Matrix is the serialized form of a dense matrix.
type Matrix struct {
	Rows int       `msgpack:"rows"`
	Cols int       `msgpack:"cols"`
	Data []float64 `msgpack:"data"`
}

// Snapshot is the persisted state of every stateful module at one step.
type Snapshot struct {
	Step    int                          `msgpack:"step"`
	Epoch   int                          `msgpack:"epoch"`
	Modules map[string]map[string]Matrix `msgpack:"modules"`
}

// Store persists snapshots.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	// Latest returns the snapshot with the highest step, or ErrNotFound.
	Latest(ctx context.Context) (*Snapshot, error)
}

// FromDense converts a matrix into its serialized form.
func FromDense(d *mat.Dense) Matrix {
	r, c := d.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, d.At(i, j))
		}
	}
	return Matrix{Rows: r, Cols: c, Data: data}
}

// Dense converts the serialized form back into a matrix.
func (m Matrix) Dense() (*mat.Dense, error) {
	if m.Rows <= 0 || m.Cols <= 0 || len(m.Data) != m.Rows*m.Cols {
		return nil, fmt.Errorf("invalid matrix shape %dx%d with %d values", m.Rows, m.Cols, len(m.Data))
	}
	return mat.NewDense(m.Rows, m.Cols, append([]float64(nil), m.Data...)), nil
}

// Capture takes a snapshot of the given modules.
func Capture(step, epoch int, modules map[string]Stateful) *Snapshot {
	s := &Snapshot{Step: step, Epoch: epoch, Modules: make(map[string]map[string]Matrix, len(modules))}
	for name, m := range modules {
		dict := m.StateDict()
		state := make(map[string]Matrix, len(dict))
		for k, d := range dict {
			state[k] = FromDense(d)
		}
		s.Modules[name] = state
	}
	return s
}

// Apply restores every module from the snapshot. A module without saved state
// is an error.
func Apply(s *Snapshot, modules map[string]Stateful) error {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		state, ok := s.Modules[name]
		if !ok {
			return fmt.Errorf("checkpoint at step %d has no state for module '%s'", s.Step, name)
		}
		dict := make(map[string]*mat.Dense, len(state))
		for k, m := range state {
			d, err := m.Dense()
			if err != nil {
				return fmt.Errorf("module '%s', parameter '%s': %w", name, k, err)
			}
			dict[k] = d
		}
		if err := modules[name].LoadStateDict(dict); err != nil {
			return fmt.Errorf("failed to load state for module '%s': %w", name, err)
		}
	}
	return nil
}

// Restore loads the latest snapshot from store and applies it. It returns the
// snapshot, or ErrNotFound when the store is empty.
func Restore(ctx context.Context, store Store, modules map[string]Stateful) (*Snapshot, error) {
	s, err := store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if err := Apply(s, modules); err != nil {
		return nil, err
	}
	return s, nil
}
