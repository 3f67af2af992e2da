// Package localexecutor provides a concrete, in-process implementation of the
// executor.Executor interface.
package localexecutor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nmgraph/internal/builder"
	"github.com/specialistvlad/nmgraph/internal/cache"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/executor"
	"github.com/specialistvlad/nmgraph/internal/graph"
	"github.com/specialistvlad/nmgraph/internal/inmemorystore"
	"github.com/specialistvlad/nmgraph/internal/node"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/nodestore"
	"github.com/specialistvlad/nmgraph/internal/scheduler"
)

// Executor implements the executor.Executor interface for local execution.
// Passes are sequential; the executor itself holds no per-pass state.
type Executor struct {
	scheduler scheduler.Scheduler
	graph     graph.Graph
	builder   builder.Builder
}

// New creates a new local executor.
func New(
	sch scheduler.Scheduler,
	g graph.Graph,
	b builder.Builder,
) executor.Executor {
	return &Executor{
		scheduler: sch,
		graph:     g,
		builder:   b,
	}
}

// Evaluate runs one pass.
func (e *Executor) Evaluate(ctx context.Context, req *executor.Request) (map[nodeid.Handle]any, error) {
	logger := ctxlog.FromContext(ctx)
	view := req.Cache

	satisfied := func(n *node.Node) bool {
		return view.HasAll(ctx, n.Outputs())
	}
	plan, err := e.scheduler.Plan(ctx, req.Targets, satisfied)
	if err != nil {
		return nil, err
	}

	values := inmemorystore.New()
	for _, n := range plan {
		if satisfied(n) {
			if err := loadCached(ctx, n, view, values); err != nil {
				return nil, err
			}
			logger.Debug("Node outputs served from cache.", "node", n.Name, "id", n.ID().String())
			continue
		}

		outputs, err := e.run(ctx, n, req, values)
		if err != nil {
			return nil, err
		}
		if err := record(ctx, n, outputs, values, view); err != nil {
			return nil, err
		}
	}

	result := make(map[nodeid.Handle]any, len(req.Targets))
	for _, h := range req.Targets {
		v, ok := values.Get(ctx, h)
		if !ok {
			return nil, &graph.MissingInputError{Handle: h, Reason: "target was not produced by the pass"}
		}
		result[h] = v
	}
	return result, nil
}

func (e *Executor) run(ctx context.Context, n *node.Node, req *executor.Request, values nodestore.Store) (map[string]any, error) {
	if n.IsDataSource() {
		batch, ok := req.Feed[n.ID()]
		if !ok {
			return nil, &graph.MissingInputError{
				Handle: n.Outputs()[0],
				Reason: fmt.Sprintf("data source '%s' was not fed a batch", n.Name),
			}
		}
		return batch, nil
	}

	t, err := e.builder.Build(ctx, n, values, req.Cache)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Running node.", "node", n.Name, "id", n.ID().String())
	return n.Module.Forward(ctx, t.ResolvedInputs)
}

func loadCached(ctx context.Context, n *node.Node, view cache.View, values nodestore.Store) error {
	for _, h := range n.Outputs() {
		v, _ := view.Lookup(ctx, h)
		if err := values.Set(ctx, h, v); err != nil {
			return err
		}
	}
	return nil
}

func record(ctx context.Context, n *node.Node, outputs map[string]any, values nodestore.Store, view cache.View) error {
	for _, h := range n.Outputs() {
		v, ok := outputs[h.Port]
		if !ok {
			return fmt.Errorf("node '%s' did not produce declared output '%s'", n.Name, h.Port)
		}
		if err := values.Set(ctx, h, v); err != nil {
			return err
		}
		if err := view.Store(ctx, h, v); err != nil {
			return err
		}
	}
	return nil
}
