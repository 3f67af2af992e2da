// Package localsession provides a concrete implementation of the session.Session
// and session.SessionFactory interfaces for local, in-process execution.
package localsession

import (
	"context"

	"github.com/specialistvlad/nmgraph/internal/builder"
	"github.com/specialistvlad/nmgraph/internal/cache"
	"github.com/specialistvlad/nmgraph/internal/checkpoint"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/dispatcher"
	"github.com/specialistvlad/nmgraph/internal/executor"
	"github.com/specialistvlad/nmgraph/internal/graph"
	"github.com/specialistvlad/nmgraph/internal/inmemorystore"
	"github.com/specialistvlad/nmgraph/internal/inmemorytopology"
	"github.com/specialistvlad/nmgraph/internal/localexecutor"
	"github.com/specialistvlad/nmgraph/internal/nodestore"
	"github.com/specialistvlad/nmgraph/internal/scheduler"
	"github.com/specialistvlad/nmgraph/internal/session"
)

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct {
	// NewCacheStore creates the per-batch cache stores. Defaults to
	// inmemorystore.New.
	NewCacheStore func() nodestore.Store
}

// NewSession creates and wires a new local session.
func (f *SessionFactory) NewSession(ctx context.Context) (session.Session, error) {
	newStore := f.NewCacheStore
	if newStore == nil {
		newStore = inmemorystore.New
	}

	g := graph.New(inmemorytopology.New())
	sched := scheduler.New(g)
	exec := localexecutor.New(sched, g, builder.New())
	c := cache.NewWithStore(newStore)

	ctxlog.FromContext(ctx).Debug("Local session created.", "graph", g.ID())
	return &Session{
		graph:      g,
		executor:   exec,
		cache:      c,
		dispatcher: dispatcher.New(g, sched, exec, c),
	}, nil
}

// Session implements session.Session for local runs.
type Session struct {
	graph      graph.Graph
	executor   executor.Executor
	cache      *cache.Cache
	dispatcher *dispatcher.Dispatcher
}

var _ session.Session = (*Session)(nil)

func (s *Session) Graph() graph.Graph {
	return s.graph
}

func (s *Session) Executor() executor.Executor {
	return s.executor
}

func (s *Session) Cache() *cache.Cache {
	return s.cache
}

func (s *Session) Train(ctx context.Context, cfg dispatcher.TrainConfig) (*dispatcher.TrainResult, error) {
	return s.dispatcher.Train(ctx, cfg)
}

func (s *Session) Infer(ctx context.Context, cfg dispatcher.InferConfig) ([][]any, error) {
	return s.dispatcher.Infer(ctx, cfg)
}

func (s *Session) ClearCache(ctx context.Context) {
	s.dispatcher.ClearCache(ctx)
}

func (s *Session) StatefulModules(ctx context.Context) map[string]checkpoint.Stateful {
	return dispatcher.StatefulModules(ctx, s.graph)
}

// Close drops the activation cache.
func (s *Session) Close(ctx context.Context) error {
	s.cache.Clear(ctx)
	ctxlog.FromContext(ctx).Debug("Local session closed.", "graph", s.graph.ID())
	return nil
}
