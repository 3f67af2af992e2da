package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/nmgraph/internal/node"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/registry"
)

// feeder advances several data sources in lockstep.
type feeder struct {
	nodes []*node.Node
	iters []registry.BatchIterator
}

func openFeeder(ctx context.Context, sources []*node.Node) (*feeder, error) {
	f := &feeder{nodes: sources}
	for _, n := range sources {
		ds := n.Module.(registry.DataSource)
		it, err := ds.Batches(ctx)
		if err != nil {
			f.close()
			return nil, fmt.Errorf("opening data source '%s': %w", n.Name, err)
		}
		f.iters = append(f.iters, it)
	}
	return f, nil
}

// next returns the next batch of every source, or io.EOF as soon as one
// source is exhausted.
func (f *feeder) next(ctx context.Context) (map[nodeid.ID]map[string]any, error) {
	feed := make(map[nodeid.ID]map[string]any, len(f.iters))
	for i, it := range f.iters {
		batch, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("reading data source '%s': %w", f.nodes[i].Name, err)
		}
		feed[f.nodes[i].ID()] = batch
	}
	return feed, nil
}

func (f *feeder) close() {
	for _, it := range f.iters {
		it.Close()
	}
}

// stepsPerEpoch is the number of batches the shortest source yields.
func stepsPerEpoch(sources []*node.Node) int {
	steps := -1
	for _, n := range sources {
		s := registry.StepsPerEpoch(n.Module.(registry.DataSource))
		if steps < 0 || s < steps {
			steps = s
		}
	}
	if steps < 0 {
		return 0
	}
	return steps
}
