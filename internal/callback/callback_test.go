package callback

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/nmgraph/internal/checkpoint"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var (
	lossHandle = nodeid.NewHandle(nodeid.ID{Graph: 1, Seq: 3}, "loss")
	accHandle  = nodeid.NewHandle(nodeid.ID{Graph: 1, Seq: 4}, "acc")
)

func TestRequested_Deduplicates(t *testing.T) {
	callbacks := []any{
		&LossLogger{Handles: []nodeid.Handle{lossHandle}},
		&SocketIO{Handles: []nodeid.Handle{lossHandle, accHandle}},
		&Evaluator{},
		"not a callback",
	}
	assert.Equal(t, []nodeid.Handle{lossHandle, accHandle}, Requested(callbacks))
}

func TestLossLogger(t *testing.T) {
	ctx, buf := testutil.Context(t)

	var printed []int
	l := &LossLogger{
		Handles:  []nodeid.Handle{lossHandle},
		Names:    []string{"loss"},
		StepFreq: 2,
		Print: func(_ context.Context, s *State, values map[string]any) {
			printed = append(printed, s.Step)
			assert.Equal(t, 0.5, values["loss"])
		},
	}
	for step := 1; step <= 4; step++ {
		s := &State{Step: step, Stepped: true, Tensors: map[nodeid.Handle]any{lossHandle: 0.5}}
		require.NoError(t, l.OnBatchEnd(ctx, s))
	}
	assert.Equal(t, []int{2, 4}, printed)

	l.Print = nil
	require.NoError(t, l.OnBatchEnd(ctx, &State{Step: 6, Stepped: true, Tensors: map[nodeid.Handle]any{lossHandle: 0.25}}))
	assert.Contains(t, buf.String(), "Training progress.")
	assert.Contains(t, buf.String(), "loss=0.25")
}

type weights struct {
	w *mat.Dense
}

func (p *weights) StateDict() map[string]*mat.Dense { return map[string]*mat.Dense{"w": p.w} }
func (p *weights) LoadStateDict(state map[string]*mat.Dense) error {
	p.w = state["w"]
	return nil
}

func TestCheckpoint_SavesAndRestores(t *testing.T) {
	ctx := context.Background()
	store := &checkpoint.DirStore{Dir: filepath.Join(t.TempDir(), "ckpt")}
	net := &weights{w: mat.NewDense(1, 1, []float64{3})}
	modules := func() map[string]checkpoint.Stateful { return map[string]checkpoint.Stateful{"net": net} }

	cb := &Checkpoint{Store: store, Modules: modules, StepFreq: 2}
	s := NewState("run")
	s.Stepped = true
	require.NoError(t, cb.OnTrainStart(ctx, s))
	for s.Step = 1; s.Step <= 3; s.Step++ {
		require.NoError(t, cb.OnBatchEnd(ctx, s))
	}
	s.Step = 3
	require.NoError(t, cb.OnTrainEnd(ctx, s))

	step, err := store.LatestStep()
	require.NoError(t, err)
	assert.Equal(t, 3, step)

	net.w = mat.NewDense(1, 1, []float64{0})
	loader := &Checkpoint{Store: store, Modules: modules, LoadFromStore: true}
	require.NoError(t, loader.OnTrainStart(ctx, NewState("run2")))
	assert.Equal(t, 3.0, net.w.At(0, 0))
}

func TestCheckpoint_LoadFromEmptyStoreIsNotAnError(t *testing.T) {
	ctx := context.Background()
	cb := &Checkpoint{
		Store:         &checkpoint.DirStore{Dir: t.TempDir()},
		Modules:       func() map[string]checkpoint.Stateful { return nil },
		LoadFromStore: true,
	}
	require.NoError(t, cb.OnTrainStart(ctx, NewState("run")))
}

func TestEvaluator_DefaultMean(t *testing.T) {
	ctx, _ := testutil.Context(t)
	e := &Evaluator{Name: "dev", Handles: []nodeid.Handle{lossHandle}, Labels: []string{"loss"}, Step: 5}
	assert.Equal(t, 5, e.EvalStep())

	acc := make(map[string]any)
	require.NoError(t, e.OnEvalBatch(ctx, map[nodeid.Handle]any{lossHandle: 1.0}, acc))
	require.NoError(t, e.OnEvalBatch(ctx, map[nodeid.Handle]any{lossHandle: 3.0}, acc))

	s := NewState("run")
	require.NoError(t, e.OnEvalDone(ctx, s, acc))
	assert.Equal(t, 2.0, s.Shared["dev/loss"])
}

func TestEvaluator_LabelsCannotCollideWithBatchCount(t *testing.T) {
	ctx, _ := testutil.Context(t)
	e := &Evaluator{
		Name:    "dev",
		Handles: []nodeid.Handle{lossHandle, accHandle},
		Labels:  []string{"_batches", "acc"},
		Step:    1,
	}

	acc := make(map[string]any)
	require.NoError(t, e.OnEvalBatch(ctx, map[nodeid.Handle]any{lossHandle: 1.0, accHandle: 0.5}, acc))
	require.NoError(t, e.OnEvalBatch(ctx, map[nodeid.Handle]any{lossHandle: 5.0, accHandle: 1.5}, acc))

	s := NewState("run")
	require.NoError(t, e.OnEvalDone(ctx, s, acc))
	assert.Equal(t, 3.0, s.Shared["dev/_batches"])
	assert.Equal(t, 1.0, s.Shared["dev/acc"])
}

func TestEvaluator_NonScalarFails(t *testing.T) {
	e := &Evaluator{Name: "dev", Handles: []nodeid.Handle{lossHandle}}
	err := e.OnEvalBatch(context.Background(), map[nodeid.Handle]any{lossHandle: "x"}, map[string]any{})
	require.Error(t, err)
}

type recordingEmitter struct {
	events   []map[string]any
	closed   bool
	failWith error
}

func (r *recordingEmitter) Emit(_ context.Context, event string, payload map[string]any) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.events = append(r.events, payload)
	return nil
}

func (r *recordingEmitter) Close() error {
	r.closed = true
	return nil
}

func TestSocketIO_EmitsMetrics(t *testing.T) {
	ctx := context.Background()
	em := &recordingEmitter{}
	cb := &SocketIO{Emitter: em, Event: "metrics", Handles: []nodeid.Handle{lossHandle}, Labels: []string{"loss"}, StepFreq: 2}

	s := NewState("run")
	s.Stepped = true
	s.Shared["dev/loss"] = 1.5
	s.Tensors = map[nodeid.Handle]any{lossHandle: 0.5}
	for s.Step = 1; s.Step <= 2; s.Step++ {
		require.NoError(t, cb.OnBatchEnd(ctx, s))
	}
	require.Len(t, em.events, 1)
	metrics := em.events[0]["metrics"].(map[string]any)
	assert.Equal(t, 0.5, metrics["loss"])
	assert.Equal(t, 1.5, metrics["dev/loss"])
	assert.Equal(t, 2, em.events[0]["step"])

	require.NoError(t, cb.OnTrainEnd(ctx, s))
	assert.False(t, em.closed)
	assert.Equal(t, true, em.events[1]["done"])

	em.failWith = errors.New("down")
	s.Step = 4
	assert.ErrorIs(t, cb.OnBatchEnd(ctx, s), em.failWith)

	require.NoError(t, cb.Close(ctx))
	assert.True(t, em.closed)
	require.NoError(t, cb.Close(ctx), "closing twice is a no-op")
}

func TestSocketIO_DialsAtTrainStart(t *testing.T) {
	ctx := context.Background()
	em := &recordingEmitter{}
	dials := 0
	cb := &SocketIO{Event: "metrics", Dial: func(context.Context) (Emitter, error) {
		dials++
		return em, nil
	}}

	require.NoError(t, cb.Close(ctx), "nothing to close before dialing")
	require.NoError(t, cb.OnTrainStart(ctx, NewState("run")))
	assert.Equal(t, 1, dials)
	assert.Same(t, em, cb.Emitter)

	require.NoError(t, cb.Close(ctx))
	assert.True(t, em.closed)
	assert.Nil(t, cb.Emitter)

	failing := &SocketIO{Dial: func(context.Context) (Emitter, error) { return nil, errors.New("refused") }}
	assert.ErrorContains(t, failing.OnTrainStart(ctx, NewState("run")), "refused")
	assert.Error(t, (&SocketIO{}).OnTrainStart(ctx, NewState("run")))
}

func TestStepFrequencyIgnoresAccumulationBatches(t *testing.T) {
	ctx := context.Background()
	em := &recordingEmitter{}
	var printed []int
	logger := &LossLogger{Handles: []nodeid.Handle{lossHandle}, StepFreq: 2, Print: func(_ context.Context, s *State, _ map[string]any) {
		printed = append(printed, s.Step)
	}}
	sock := &SocketIO{Emitter: em, Handles: []nodeid.Handle{lossHandle}, StepFreq: 2}

	// Two batches per step: only the batch that completes a step reports.
	s := NewState("run")
	s.Tensors = map[nodeid.Handle]any{lossHandle: 0.5}
	for batch := 1; batch <= 8; batch++ {
		s.Stepped = batch%2 == 0
		if s.Stepped {
			s.Step++
		}
		require.NoError(t, logger.OnBatchEnd(ctx, s))
		require.NoError(t, sock.OnBatchEnd(ctx, s))
	}
	assert.Equal(t, []int{2, 4}, printed)
	require.Len(t, em.events, 2)
	assert.Equal(t, 4, em.events[1]["step"])
}

func TestConnectError(t *testing.T) {
	cause := errors.New("refused")
	assert.Same(t, cause, connectError([]any{cause}))
	assert.EqualError(t, connectError([]any{"timeout"}), "timeout")
	assert.EqualError(t, connectError(nil), "connect_error without details")
}
