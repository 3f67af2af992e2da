package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/specialistvlad/nmgraph/internal/callback"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/executor"
	"github.com/specialistvlad/nmgraph/internal/lrpolicy"
	"github.com/specialistvlad/nmgraph/internal/node"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
)

// TrainConfig configures one train action. Exactly one of NumEpochs and
// MaxSteps must be positive.
type TrainConfig struct {
	Losses    []nodeid.Handle
	Optimizer Optimizer
	LR        float64
	// Schedule overrides Policy. Without either the rate is constant.
	Schedule      lrpolicy.Schedule
	Policy        string
	PolicyOptions lrpolicy.Options
	NumEpochs     int
	MaxSteps      int
	// BatchesPerStep is the number of batches whose losses are accumulated
	// per optimizer step. Zero means one. Accumulation carries over epoch
	// boundaries.
	BatchesPerStep int
	Callbacks      []any
}

// TrainResult summarizes a finished train action.
type TrainResult struct {
	RunID  string
	Steps  int
	Epochs int
	LR     float64
}

type trainRun struct {
	cfg       TrainConfig
	targets   []nodeid.Handle
	sources   []*node.Node
	evals     []callback.Evaluation
	evalSrc   [][]*node.Node
	schedule  lrpolicy.Schedule
	optimizer Optimizer
	state     *callback.State
	// pending counts the batches accumulated since the last optimizer step.
	pending int
}

// Train runs the training loop. Callbacks implementing callback.Closer are
// closed once the loop ends, whether or not it succeeded.
func (d *Dispatcher) Train(ctx context.Context, cfg TrainConfig) (res *TrainResult, err error) {
	run, err := d.prepareTrain(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := closeCallbacks(ctx, cfg.Callbacks); cerr != nil {
			res, err = nil, errors.Join(err, cerr)
		}
	}()

	logger := ctxlog.FromContext(ctx).With("action", "train", "run_id", run.state.RunID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Info("Train action started.", "losses", len(cfg.Losses), "num_epochs", cfg.NumEpochs, "max_steps", cfg.MaxSteps)

	s := run.state
	for _, cb := range cfg.Callbacks {
		if h, ok := cb.(callback.TrainStarter); ok {
			if err := h.OnTrainStart(ctx, s); err != nil {
				return nil, err
			}
		}
	}

	epochs := 0
	for epoch := 0; ; epoch++ {
		if cfg.NumEpochs > 0 && epoch >= cfg.NumEpochs {
			break
		}
		if cfg.MaxSteps > 0 && s.Step >= cfg.MaxSteps {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.Epoch = epoch
		if err := d.runEpoch(ctx, run); err != nil {
			return nil, err
		}
		epochs++
	}

	for _, cb := range cfg.Callbacks {
		if h, ok := cb.(callback.TrainEnder); ok {
			if err := h.OnTrainEnd(ctx, s); err != nil {
				return nil, err
			}
		}
	}

	if run.pending > 0 {
		logger.Debug("Dropping batches accumulated after the last step.", "batches", run.pending)
	}
	logger.Info("Train action finished.", "steps", s.Step, "epochs", epochs)
	return &TrainResult{RunID: s.RunID, Steps: s.Step, Epochs: epochs, LR: s.LR}, nil
}

func (d *Dispatcher) prepareTrain(ctx context.Context, cfg TrainConfig) (_ *trainRun, err error) {
	switch {
	case len(cfg.Losses) == 0:
		return nil, &ConfigError{Action: "train", Msg: "no losses"}
	case cfg.NumEpochs > 0 && cfg.MaxSteps > 0:
		return nil, &ConfigError{Action: "train", Msg: "num_epochs and max_steps are mutually exclusive"}
	case cfg.NumEpochs <= 0 && cfg.MaxSteps <= 0:
		return nil, &ConfigError{Action: "train", Msg: "one of num_epochs or max_steps must be positive"}
	case cfg.BatchesPerStep < 0:
		return nil, &ConfigError{Action: "train", Msg: "batches_per_step cannot be negative"}
	case cfg.LR < 0:
		return nil, &ConfigError{Action: "train", Msg: "lr cannot be negative"}
	}
	if cfg.BatchesPerStep == 0 {
		cfg.BatchesPerStep = 1
	}
	if len(cfg.Callbacks) > 0 {
		defer func() {
			if err != nil {
				err = errors.Join(err, closeCallbacks(ctx, cfg.Callbacks))
			}
		}()
	}

	run := &trainRun{
		cfg:       cfg,
		targets:   dedupe(cfg.Losses, callback.Requested(cfg.Callbacks)),
		optimizer: cfg.Optimizer,
		state:     callback.NewState(uuid.NewString()),
	}
	if run.optimizer == nil {
		run.optimizer = &NoopOptimizer{}
	}
	if err := d.validateTargets(ctx, run.targets); err != nil {
		return nil, err
	}

	sources, err := d.dataSources(ctx, run.targets)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, &ConfigError{Action: "train", Msg: "no data source in the closure of the losses"}
	}
	run.sources = sources
	logSources(ctx, "train", sources)

	if perEpoch := stepsPerEpoch(sources); cfg.NumEpochs > 0 && perEpoch > 0 && cfg.BatchesPerStep > perEpoch*cfg.NumEpochs {
		return nil, &ConfigError{Action: "train", Msg: fmt.Sprintf(
			"batches_per_step %d exceeds the %d batches of %d epoch(s), no optimizer step would be taken",
			cfg.BatchesPerStep, perEpoch*cfg.NumEpochs, cfg.NumEpochs)}
	}

	for _, cb := range cfg.Callbacks {
		ev, ok := cb.(callback.Evaluation)
		if !ok {
			continue
		}
		if err := d.validateTargets(ctx, ev.EvalTensors()); err != nil {
			return nil, err
		}
		evSources, err := d.dataSources(ctx, ev.EvalTensors())
		if err != nil {
			return nil, err
		}
		if len(evSources) == 0 {
			return nil, &ConfigError{Action: "train", Msg: "evaluation callback has no data source in the closure of its tensors"}
		}
		run.evals = append(run.evals, ev)
		run.evalSrc = append(run.evalSrc, evSources)
	}

	run.schedule = cfg.Schedule
	if run.schedule == nil && cfg.Policy != "" {
		total := cfg.MaxSteps
		if total <= 0 {
			total = stepsPerEpoch(sources) * cfg.NumEpochs / cfg.BatchesPerStep
		}
		run.schedule, err = lrpolicy.Get(cfg.Policy, cfg.LR, total, cfg.PolicyOptions)
		if err != nil {
			return nil, &ConfigError{Action: "train", Msg: err.Error()}
		}
	}
	if run.schedule == nil {
		run.schedule = lrpolicy.Constant(cfg.LR)
	}
	run.state.LR = run.schedule(0)
	return run, nil
}

func (d *Dispatcher) runEpoch(ctx context.Context, run *trainRun) error {
	cfg, s := run.cfg, run.state
	for _, cb := range cfg.Callbacks {
		if h, ok := cb.(callback.EpochStarter); ok {
			if err := h.OnEpochStart(ctx, s); err != nil {
				return err
			}
		}
	}

	f, err := openFeeder(ctx, run.sources)
	if err != nil {
		return err
	}
	defer f.close()

	batches := 0
	for {
		if cfg.MaxSteps > 0 && s.Step >= cfg.MaxSteps {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		feed, err := f.next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		batches++
		if err := d.runBatch(ctx, run, feed); err != nil {
			return err
		}
	}
	if batches == 0 {
		return fmt.Errorf("epoch %d: data sources produced no batches", s.Epoch)
	}

	for _, cb := range cfg.Callbacks {
		if h, ok := cb.(callback.EpochEnder); ok {
			if err := h.OnEpochEnd(ctx, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Dispatcher) runBatch(ctx context.Context, run *trainRun, feed map[nodeid.ID]map[string]any) error {
	cfg, s := run.cfg, run.state
	s.Stepped = false
	for _, cb := range cfg.Callbacks {
		if h, ok := cb.(callback.BatchStarter); ok {
			if err := h.OnBatchStart(ctx, s); err != nil {
				return err
			}
		}
	}

	values, err := d.exec.Evaluate(ctx, &executor.Request{Targets: run.targets, Feed: feed})
	if err != nil {
		return err
	}
	s.Tensors = values

	run.pending++
	if run.pending == cfg.BatchesPerStep {
		run.pending = 0
		lr := run.schedule(s.Step)
		losses := make(map[nodeid.Handle]any, len(cfg.Losses))
		for _, h := range cfg.Losses {
			losses[h] = values[h]
		}
		if err := run.optimizer.Step(ctx, lr, losses); err != nil {
			return fmt.Errorf("optimizer step %d: %w", s.Step, err)
		}
		s.Step++
		s.LR = lr
		s.Stepped = true
	}

	for _, cb := range cfg.Callbacks {
		if h, ok := cb.(callback.BatchEnder); ok {
			if err := h.OnBatchEnd(ctx, s); err != nil {
				return err
			}
		}
	}

	if !s.Stepped {
		return nil
	}
	for i, ev := range run.evals {
		if ev.EvalStep() > 0 && s.Step%ev.EvalStep() == 0 {
			if err := d.runEvaluation(ctx, ev, run.evalSrc[i], s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Dispatcher) runEvaluation(ctx context.Context, ev callback.Evaluation, sources []*node.Node, s *callback.State) error {
	f, err := openFeeder(ctx, sources)
	if err != nil {
		return err
	}
	defer f.close()

	acc := make(map[string]any)
	for {
		feed, err := f.next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		values, err := d.exec.Evaluate(ctx, &executor.Request{Targets: ev.EvalTensors(), Feed: feed})
		if err != nil {
			return err
		}
		if err := ev.OnEvalBatch(ctx, values, acc); err != nil {
			return err
		}
	}
	return ev.OnEvalDone(ctx, s, acc)
}

func closeCallbacks(ctx context.Context, callbacks []any) error {
	var errs []error
	for _, cb := range callbacks {
		if c, ok := cb.(callback.Closer); ok {
			if err := c.Close(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
