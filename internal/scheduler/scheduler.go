package scheduler

import (
	"context"
	"sort"

	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/graph"
	"github.com/specialistvlad/nmgraph/internal/node"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
)

// Scheduler computes execution plans over a graph.
type Scheduler interface {
	// Plan returns the minimal upstream closure of targets in topological
	// order. The walk does not descend past nodes for which satisfied returns
	// true; satisfied may be nil.
	//
	// A target that does not belong to the graph yields a
	// *graph.MissingInputError.
	Plan(ctx context.Context, targets []nodeid.Handle, satisfied func(*node.Node) bool) ([]*node.Node, error)
}

// DefaultScheduler is the reference implementation of the Scheduler interface.
type DefaultScheduler struct {
	graph graph.Graph
}

// New creates a new default scheduler. It requires the graph it will be analyzing.
func New(g graph.Graph) Scheduler {
	return &DefaultScheduler{graph: g}
}

// Plan walks the closure of targets and sorts it by creation sequence.
func (s *DefaultScheduler) Plan(ctx context.Context, targets []nodeid.Handle, satisfied func(*node.Node) bool) ([]*node.Node, error) {
	visited := make(map[nodeid.ID]*node.Node)
	stack := make([]*node.Node, 0, len(targets))

	for _, h := range targets {
		n, err := s.graph.NodeOf(ctx, h)
		if err != nil {
			return nil, err
		}
		stack = append(stack, n)
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[n.ID()]; seen {
			continue
		}
		visited[n.ID()] = n

		if satisfied != nil && satisfied(n) {
			continue
		}
		deps, err := s.graph.DependenciesOf(ctx, n.ID())
		if err != nil {
			return nil, err
		}
		for _, dep := range deps {
			if _, seen := visited[dep.ID()]; !seen {
				stack = append(stack, dep)
			}
		}
	}

	plan := make([]*node.Node, 0, len(visited))
	for _, n := range visited {
		plan = append(plan, n)
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].ID().Seq < plan[j].ID().Seq })

	ctxlog.FromContext(ctx).Debug("Execution plan computed.", "targets", len(targets), "nodes", len(plan))
	return plan, nil
}
