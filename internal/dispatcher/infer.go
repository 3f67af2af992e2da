package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/specialistvlad/nmgraph/internal/cache"
	"github.com/specialistvlad/nmgraph/internal/checkpoint"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/executor"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
)

// InferConfig configures one infer action.
type InferConfig struct {
	Targets []nodeid.Handle
	// CheckpointDir restores module parameters from the latest checkpoint in
	// the directory before anything runs. Checkpoint takes precedence.
	CheckpointDir string
	Checkpoint    checkpoint.Store
	// Cache populates the activation cache; UseCache consumes it.
	Cache    bool
	UseCache bool
}

// Infer evaluates the targets once per batch and returns, per target, the
// sequence of per-batch values.
func (d *Dispatcher) Infer(ctx context.Context, cfg InferConfig) (result [][]any, err error) {
	if len(cfg.Targets) == 0 {
		return nil, &ConfigError{Action: "infer", Msg: "no targets"}
	}
	if err := d.validateTargets(ctx, cfg.Targets); err != nil {
		return nil, err
	}
	mode, err := cache.ModeFromFlags(cfg.Cache, cfg.UseCache)
	if err != nil {
		return nil, err
	}
	if err := d.cache.Begin(ctx, mode); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			d.cache.Abort(ctx)
			return
		}
		d.cache.Commit(ctx)
	}()

	runID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("action", "infer", "run_id", runID)
	logger.Info("Infer action started.", "targets", len(cfg.Targets), "cache_mode", mode.String())

	if err := d.restore(ctx, cfg); err != nil {
		return nil, err
	}

	result = make([][]any, len(cfg.Targets))
	collect := func(values map[nodeid.Handle]any) {
		for i, h := range cfg.Targets {
			result[i] = append(result[i], values[h])
		}
	}

	if mode == cache.ModeConsume {
		batches := d.cache.Batches()
		for i := 0; i < batches; i++ {
			values, err := d.exec.Evaluate(ctx, &executor.Request{Targets: cfg.Targets, Cache: d.cache.Batch(i)})
			if err != nil {
				return nil, err
			}
			collect(values)
		}
		logger.Info("Infer action finished.", "batches", batches)
		return result, nil
	}

	sources, err := d.dataSources(ctx, cfg.Targets)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, &ConfigError{Action: "infer", Msg: "no data source in the closure of the targets"}
	}
	logSources(ctx, "infer", sources)

	f, err := openFeeder(ctx, sources)
	if err != nil {
		return nil, err
	}
	defer f.close()

	batches := 0
	for {
		feed, err := f.next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		values, err := d.exec.Evaluate(ctx, &executor.Request{Targets: cfg.Targets, Feed: feed, Cache: d.cache.Batch(batches)})
		if err != nil {
			return nil, err
		}
		collect(values)
		batches++
	}

	logger.Info("Infer action finished.", "batches", batches)
	return result, nil
}

func (d *Dispatcher) restore(ctx context.Context, cfg InferConfig) error {
	store := cfg.Checkpoint
	if store == nil && cfg.CheckpointDir != "" {
		store = &checkpoint.DirStore{Dir: cfg.CheckpointDir}
	}
	if store == nil {
		return nil
	}
	snap, err := checkpoint.Restore(ctx, store, StatefulModules(ctx, d.graph))
	if err != nil {
		return fmt.Errorf("restoring checkpoint: %w", err)
	}
	ctxlog.FromContext(ctx).Info("Restored module parameters.", "checkpoint_step", snap.Step)
	return nil
}
