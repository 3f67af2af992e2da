package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/nmgraph/internal/config"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/pipeline"
	"github.com/specialistvlad/nmgraph/internal/tensor"
)

// Run builds the pipeline on a fresh session and executes the configured
// action. Infer results are written to the output writer, one line per
// target.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "action", a.config.Action)

	a.startHealthCheckServer()
	defer func() {
		err = errors.Join(err, a.closeHealthCheckServer(ctx))
	}()

	sess, err := a.sessions.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer func() {
		err = errors.Join(err, sess.Close(ctx))
	}()

	p, err := pipeline.Build(ctx, a.model, a.converter, a.registry, sess, a.options)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	action, err := a.resolveAction(p)
	if err != nil {
		return err
	}

	switch action {
	case ActionTrain:
		cfg, err := p.TrainConfig(ctx)
		if err != nil {
			return err
		}
		res, err := sess.Train(ctx, cfg)
		if err != nil {
			return fmt.Errorf("train failed: %w", err)
		}
		a.logger.Info("Training finished.", "run_id", res.RunID, "steps", res.Steps, "epochs", res.Epochs)
	case ActionInfer:
		cfg, err := p.InferConfig()
		if err != nil {
			return err
		}
		results, err := sess.Infer(ctx, cfg)
		if err != nil {
			return fmt.Errorf("infer failed: %w", err)
		}
		a.printResults(a.model.Infer.Targets, results)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) resolveAction(p *pipeline.Pipeline) (string, error) {
	switch a.config.Action {
	case ActionTrain:
		if !p.HasTrain() {
			return "", errors.New("action 'train' requested but the pipeline declares no train block")
		}
		return ActionTrain, nil
	case ActionInfer:
		if !p.HasInfer() {
			return "", errors.New("action 'infer' requested but the pipeline declares no infer block")
		}
		return ActionInfer, nil
	default:
		if p.HasTrain() {
			return ActionTrain, nil
		}
		if p.HasInfer() {
			return ActionInfer, nil
		}
		return "", errors.New("the pipeline declares neither a train nor an infer block")
	}
}

func (a *App) printResults(targets []config.Ref, results [][]any) {
	for i, ref := range targets {
		values := make([]string, len(results[i]))
		for j, v := range results[i] {
			values[j] = tensor.Format(v)
		}
		fmt.Fprintf(a.outW, "%s = [%s]\n", ref, strings.Join(values, ", "))
	}
}
