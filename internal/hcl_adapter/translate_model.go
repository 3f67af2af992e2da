// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nmgraph/internal/config"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
)

func (l *Loader) translateCall(ctx context.Context, c *CallBlock) (*config.Call, error) {
	ctxlog.FromContext(ctx).Debug("Translating HCL call to internal config model.", "call", c.Name, "module", c.Module)
	call := &config.Call{
		Name:   c.Name,
		Module: c.Module,
		Inputs: map[string]config.Ref{},
		Source: c.Remain.MissingItemRange().String(),
	}
	if isExprDefined(ctx, c.Inputs, "inputs") {
		inputs, err := inputsFromExpr(c.Inputs)
		if err != nil {
			return nil, fmt.Errorf("call '%s': %w", c.Name, err)
		}
		call.Inputs = inputs
	}
	return call, nil
}

func (l *Loader) translateInfer(b *InferBlock) (*config.Infer, error) {
	targets, err := refsFromExpr(b.Targets, "targets")
	if err != nil {
		return nil, fmt.Errorf("infer: %w", err)
	}
	return &config.Infer{
		Targets:       targets,
		Cache:         b.Cache,
		UseCache:      b.UseCache,
		CheckpointDir: b.CheckpointDir,
	}, nil
}

func (l *Loader) translateTrain(ctx context.Context, b *TrainBlock) (*config.Train, error) {
	losses, err := refsFromExpr(b.Losses, "losses")
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	t := &config.Train{
		Losses:         losses,
		NumEpochs:      b.NumEpochs,
		MaxSteps:       b.MaxSteps,
		LR:             b.LR,
		Optimizer:      b.Optimizer,
		BatchesPerStep: b.BatchesPerStep,
	}
	if p := b.LRPolicy; p != nil {
		t.LRPolicy = &config.LRPolicy{Name: p.Name, WarmupSteps: p.WarmupSteps, WarmupRatio: p.WarmupRatio, MinLR: p.MinLR}
	}
	if ll := b.LossLogger; ll != nil {
		tensors, err := refsFromExpr(ll.Tensors, "tensors")
		if err != nil {
			return nil, fmt.Errorf("train.loss_logger: %w", err)
		}
		t.LossLogger = &config.LossLogger{Tensors: tensors, StepFreq: ll.StepFreq}
	}
	if c := b.Checkpoint; c != nil {
		t.Checkpoint = &config.Checkpoint{
			Folder:         c.Folder,
			StepFreq:       c.StepFreq,
			EpochFreq:      c.EpochFreq,
			LoadFromFolder: c.LoadFromFolder,
			Bucket:         c.Bucket,
			Prefix:         c.Prefix,
		}
	}
	for _, e := range b.Evaluators {
		tensors, err := refsFromExpr(e.Tensors, "tensors")
		if err != nil {
			return nil, fmt.Errorf("train.evaluator '%s': %w", e.Name, err)
		}
		t.Evaluators = append(t.Evaluators, &config.Evaluator{Name: e.Name, Tensors: tensors, EvalStep: e.EvalStep})
	}
	if s := b.SocketIO; s != nil {
		sio := &config.SocketIO{
			URL:                s.URL,
			Namespace:          s.Namespace,
			Event:              s.Event,
			StepFreq:           s.StepFreq,
			InsecureSkipVerify: s.InsecureSkipVerify,
		}
		if isExprDefined(ctx, s.Tensors, "tensors") {
			if sio.Tensors, err = refsFromExpr(s.Tensors, "tensors"); err != nil {
				return nil, fmt.Errorf("train.socketio: %w", err)
			}
		}
		t.SocketIO = sio
	}
	return t, nil
}
