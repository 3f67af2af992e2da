package callback

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/tensor"
)

// Evaluator runs the evaluation tensors every Step steps.
//
// By default every tensor is reduced to a scalar and averaged over the
// evaluation batches; the means are logged and stored in State.Shared under
// "<name>/<tensor>".
type Evaluator struct {
	Name    string
	Handles []nodeid.Handle
	// Labels name the handles in results; defaults to the handle string.
	Labels []string
	Step   int
	// Iter replaces the default accumulation.
	Iter func(ctx context.Context, values map[nodeid.Handle]any, acc map[string]any) error
	// Done replaces the default report.
	Done func(ctx context.Context, s *State, acc map[string]any) error
}

var _ Evaluation = (*Evaluator)(nil)

func (e *Evaluator) EvalTensors() []nodeid.Handle {
	return e.Handles
}

func (e *Evaluator) EvalStep() int {
	return e.Step
}

func (e *Evaluator) label(i int) string {
	if i < len(e.Labels) && e.Labels[i] != "" {
		return e.Labels[i]
	}
	return e.Handles[i].String()
}

func (e *Evaluator) OnEvalBatch(ctx context.Context, values map[nodeid.Handle]any, acc map[string]any) error {
	if e.Iter != nil {
		return e.Iter(ctx, values, acc)
	}
	t := totalsOf(acc)
	for i, h := range e.Handles {
		v, err := tensor.Scalar(values[h])
		if err != nil {
			return fmt.Errorf("evaluator '%s': %w", e.Name, err)
		}
		t.sums[e.label(i)] += v
	}
	t.batches++
	return nil
}

func (e *Evaluator) OnEvalDone(ctx context.Context, s *State, acc map[string]any) error {
	if e.Done != nil {
		return e.Done(ctx, s, acc)
	}
	t := totalsOf(acc)
	if t.batches == 0 {
		return nil
	}

	keys := make([]string, 0, len(e.Handles))
	for i := range e.Handles {
		keys = append(keys, e.label(i))
	}
	sort.Strings(keys)

	attrs := []any{"evaluator", e.Name, "step", s.Step, "batches", t.batches}
	for _, k := range keys {
		mean := t.sums[k] / float64(t.batches)
		s.Shared[e.Name+"/"+k] = mean
		attrs = append(attrs, k, mean)
	}
	ctxlog.FromContext(ctx).Info("Evaluation finished.", attrs...)
	return nil
}

// totalsKey holds the default accumulation. Labels are never empty, so it
// cannot collide with one.
const totalsKey = ""

type evalTotals struct {
	batches int
	sums    map[string]float64
}

func totalsOf(acc map[string]any) *evalTotals {
	if t, ok := acc[totalsKey].(*evalTotals); ok {
		return t
	}
	t := &evalTotals{sums: make(map[string]float64)}
	acc[totalsKey] = t
	return t
}
