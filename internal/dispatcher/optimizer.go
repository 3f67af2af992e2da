package dispatcher

import (
	"context"

	"github.com/specialistvlad/nmgraph/internal/nodeid"
)

// Optimizer applies one parameter update. Gradient computation and the update
// rule are entirely up to the implementation.
type Optimizer interface {
	Step(ctx context.Context, lr float64, losses map[nodeid.Handle]any) error
}

// NoopOptimizer counts steps and changes nothing.
type NoopOptimizer struct {
	Steps int
}

func (o *NoopOptimizer) Step(context.Context, float64, map[nodeid.Handle]any) error {
	o.Steps++
	return nil
}
