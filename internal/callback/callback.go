package callback

import (
	"context"

	"github.com/specialistvlad/nmgraph/internal/nodeid"
)

// State is the training progress shared with every hook.
type State struct {
	RunID string
	// Step is the number of optimizer steps taken so far.
	Step int
	// Stepped reports whether the current batch ended with an optimizer step.
	// It stays false on batches that only accumulate.
	Stepped bool
	// Epoch is the zero-based index of the current epoch.
	Epoch int
	// LR is the learning rate used for the most recent step.
	LR float64
	// Tensors holds the values computed for the current batch: the losses plus
	// every handle requested by a TensorRequester.
	Tensors map[nodeid.Handle]any
	// Shared is free-form storage that callbacks may use to exchange results,
	// e.g. evaluation metrics.
	Shared map[string]any
}

// NewState creates an empty state.
func NewState(runID string) *State {
	return &State{RunID: runID, Shared: make(map[string]any)}
}

type TrainStarter interface {
	OnTrainStart(ctx context.Context, s *State) error
}

type EpochStarter interface {
	OnEpochStart(ctx context.Context, s *State) error
}

type BatchStarter interface {
	OnBatchStart(ctx context.Context, s *State) error
}

type BatchEnder interface {
	OnBatchEnd(ctx context.Context, s *State) error
}

type EpochEnder interface {
	OnEpochEnd(ctx context.Context, s *State) error
}

type TrainEnder interface {
	OnTrainEnd(ctx context.Context, s *State) error
}

// Closer releases what a callback holds. The train action calls Close once,
// on every exit path, after the run was accepted or rejected.
type Closer interface {
	Close(ctx context.Context) error
}

// TensorRequester asks the dispatcher to evaluate extra handles on every
// training batch and expose them in State.Tensors.
type TensorRequester interface {
	Tensors() []nodeid.Handle
}

// Evaluation runs a separate pass over its own data every EvalStep steps.
type Evaluation interface {
	EvalTensors() []nodeid.Handle
	EvalStep() int
	// OnEvalBatch is called once per evaluation batch with the evaluated
	// values. acc is a fresh map per evaluation run.
	OnEvalBatch(ctx context.Context, values map[nodeid.Handle]any, acc map[string]any) error
	// OnEvalDone is called after the last evaluation batch.
	OnEvalDone(ctx context.Context, s *State, acc map[string]any) error
}

// Requested collects the handles requested by every TensorRequester, without
// duplicates, in first-seen order.
func Requested(callbacks []any) []nodeid.Handle {
	seen := make(map[nodeid.Handle]struct{})
	var out []nodeid.Handle
	for _, cb := range callbacks {
		r, ok := cb.(TensorRequester)
		if !ok {
			continue
		}
		for _, h := range r.Tensors() {
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}
