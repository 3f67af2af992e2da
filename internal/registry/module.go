package registry

import (
	"context"
)

// Module is a stateful computation unit with named input and output ports.
//
// The port lists are fixed for the lifetime of the instance. Forward receives
// one value per declared input port and must return one value per declared
// output port.
type Module interface {
	InputPorts() []string
	OutputPorts() []string
	Forward(ctx context.Context, inputs map[string]any) (map[string]any, error)
}

// DataSource is a module with no input ports that produces batches.
//
// Its node outputs are never computed by Forward during an evaluation pass;
// the dispatcher pulls a batch from the iterator and feeds it to the pass.
type DataSource interface {
	Module
	// Len is the number of examples in one epoch.
	Len() int
	// BatchSize is the number of examples per batch.
	BatchSize() int
	// Batches starts a fresh pass over the data.
	Batches(ctx context.Context) (BatchIterator, error)
}

// BatchIterator yields one map of output-port values per batch. Next returns
// io.EOF when the epoch is exhausted.
type BatchIterator interface {
	Next(ctx context.Context) (map[string]any, error)
	Close() error
}

// StepsPerEpoch returns ceil(Len / BatchSize).
func StepsPerEpoch(ds DataSource) int {
	bs := ds.BatchSize()
	if bs <= 0 {
		return 0
	}
	return (ds.Len() + bs - 1) / bs
}

// IsDataSource reports whether m is a data source.
func IsDataSource(m Module) bool {
	_, ok := m.(DataSource)
	return ok
}
