// Package session defines the context object that owns one graph together
// with its evaluator, cache and dispatcher. Every collaborator is created by a
// SessionFactory instead of being reached through process-wide state.
package session

import (
	"context"

	"github.com/specialistvlad/nmgraph/internal/cache"
	"github.com/specialistvlad/nmgraph/internal/checkpoint"
	"github.com/specialistvlad/nmgraph/internal/dispatcher"
	"github.com/specialistvlad/nmgraph/internal/executor"
	"github.com/specialistvlad/nmgraph/internal/graph"
)

// SessionFactory creates a Session. Different implementations can support
// various backends, such as local or distributed execution.
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
}

// Session represents one graph and the machinery that runs actions on it.
type Session interface {
	Graph() graph.Graph
	Executor() executor.Executor
	Cache() *cache.Cache

	Train(ctx context.Context, cfg dispatcher.TrainConfig) (*dispatcher.TrainResult, error)
	Infer(ctx context.Context, cfg dispatcher.InferConfig) ([][]any, error)
	ClearCache(ctx context.Context)

	// StatefulModules returns every module of the graph that carries
	// parameters, keyed by instance name.
	StatefulModules(ctx context.Context) map[string]checkpoint.Stateful

	// Close releases any resources held by the session. It accepts a context
	// to allow for graceful cleanup operations.
	Close(ctx context.Context) error
}
