package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/nmgraph/internal/callback"
	"github.com/specialistvlad/nmgraph/internal/checkpoint"
	"github.com/specialistvlad/nmgraph/internal/dispatcher"
	"github.com/specialistvlad/nmgraph/internal/lrpolicy"
)

// InferConfig resolves the infer block.
func (p *Pipeline) InferConfig() (dispatcher.InferConfig, error) {
	b := p.model.Infer
	if b == nil {
		return dispatcher.InferConfig{}, &dispatcher.ConfigError{Action: "infer", Msg: "no infer block declared"}
	}
	targets, _, err := p.handles(b.Targets)
	if err != nil {
		return dispatcher.InferConfig{}, fmt.Errorf("infer: %w", err)
	}
	return dispatcher.InferConfig{
		Targets:       targets,
		CheckpointDir: b.CheckpointDir,
		Cache:         b.Cache,
		UseCache:      b.UseCache,
	}, nil
}

// TrainConfig resolves the train block and builds its callbacks. A socketio
// callback connects to its server when training starts, after the train
// configuration was accepted.
func (p *Pipeline) TrainConfig(ctx context.Context) (dispatcher.TrainConfig, error) {
	b := p.model.Train
	if b == nil {
		return dispatcher.TrainConfig{}, &dispatcher.ConfigError{Action: "train", Msg: "no train block declared"}
	}
	losses, _, err := p.handles(b.Losses)
	if err != nil {
		return dispatcher.TrainConfig{}, fmt.Errorf("train: %w", err)
	}
	opt, err := p.optimizer(b.Optimizer)
	if err != nil {
		return dispatcher.TrainConfig{}, err
	}

	cfg := dispatcher.TrainConfig{
		Losses:         losses,
		Optimizer:      opt,
		LR:             b.LR,
		NumEpochs:      b.NumEpochs,
		MaxSteps:       b.MaxSteps,
		BatchesPerStep: b.BatchesPerStep,
	}
	if pol := b.LRPolicy; pol != nil {
		cfg.Policy = pol.Name
		cfg.PolicyOptions = lrpolicy.Options{WarmupSteps: pol.WarmupSteps, WarmupRatio: pol.WarmupRatio, MinLR: pol.MinLR}
	}

	if ll := b.LossLogger; ll != nil {
		hs, labels, err := p.handles(ll.Tensors)
		if err != nil {
			return dispatcher.TrainConfig{}, fmt.Errorf("train.loss_logger: %w", err)
		}
		cfg.Callbacks = append(cfg.Callbacks, &callback.LossLogger{Handles: hs, Names: labels, StepFreq: ll.StepFreq})
	}
	if c := b.Checkpoint; c != nil {
		cfg.Callbacks = append(cfg.Callbacks, &callback.Checkpoint{
			Store:         checkpoint.NewStore(c.Folder, c.Bucket, c.Prefix),
			Modules:       func() map[string]checkpoint.Stateful { return p.session.StatefulModules(ctx) },
			StepFreq:      c.StepFreq,
			EpochFreq:     c.EpochFreq,
			LoadFromStore: c.LoadFromFolder,
		})
	}
	for _, e := range b.Evaluators {
		hs, labels, err := p.handles(e.Tensors)
		if err != nil {
			return dispatcher.TrainConfig{}, fmt.Errorf("train.evaluator '%s': %w", e.Name, err)
		}
		cfg.Callbacks = append(cfg.Callbacks, &callback.Evaluator{Name: e.Name, Handles: hs, Labels: labels, Step: e.EvalStep})
	}
	if s := b.SocketIO; s != nil {
		hs, labels, err := p.handles(s.Tensors)
		if err != nil {
			return dispatcher.TrainConfig{}, fmt.Errorf("train.socketio: %w", err)
		}
		dial := p.opts.Dial
		if dial == nil {
			dial = dialSocketIO
		}
		url, namespace, insecure := s.URL, s.Namespace, s.InsecureSkipVerify
		event := s.Event
		if event == "" {
			event = "metrics"
		}
		cfg.Callbacks = append(cfg.Callbacks, &callback.SocketIO{
			Dial: func(ctx context.Context) (callback.Emitter, error) {
				return dial(ctx, url, namespace, insecure)
			},
			Event:    event,
			Handles:  hs,
			Labels:   labels,
			StepFreq: s.StepFreq,
		})
	}
	return cfg, nil
}

func (p *Pipeline) optimizer(name string) (dispatcher.Optimizer, error) {
	if name == "" || name == "none" {
		return &dispatcher.NoopOptimizer{}, nil
	}
	if opt, ok := p.opts.Optimizers[name]; ok {
		return opt, nil
	}
	known := []string{"none"}
	for n := range p.opts.Optimizers {
		known = append(known, n)
	}
	sort.Strings(known)
	return nil, &dispatcher.ConfigError{Action: "train", Msg: fmt.Sprintf("unknown optimizer '%s', expected one of %v", name, known)}
}

func dialSocketIO(ctx context.Context, url, namespace string, insecure bool) (callback.Emitter, error) {
	return callback.DialSocketIO(ctx, url, namespace, insecure)
}
