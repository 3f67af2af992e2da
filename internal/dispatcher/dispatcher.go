package dispatcher

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/nmgraph/internal/cache"
	"github.com/specialistvlad/nmgraph/internal/checkpoint"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/executor"
	"github.com/specialistvlad/nmgraph/internal/graph"
	"github.com/specialistvlad/nmgraph/internal/node"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/scheduler"
)

// Dispatcher runs actions against one graph, executor and cache.
type Dispatcher struct {
	graph     graph.Graph
	scheduler scheduler.Scheduler
	exec      executor.Executor
	cache     *cache.Cache
}

// New creates a dispatcher.
func New(g graph.Graph, sch scheduler.Scheduler, exec executor.Executor, c *cache.Cache) *Dispatcher {
	return &Dispatcher{graph: g, scheduler: sch, exec: exec, cache: c}
}

// Cache returns the activation cache.
func (d *Dispatcher) Cache() *cache.Cache {
	return d.cache
}

// ClearCache drops every cache entry and disables the cache.
func (d *Dispatcher) ClearCache(ctx context.Context) {
	d.cache.Clear(ctx)
}

// dataSources returns the data-source nodes in the closure of handles, in
// creation order.
func (d *Dispatcher) dataSources(ctx context.Context, handles []nodeid.Handle) ([]*node.Node, error) {
	plan, err := d.scheduler.Plan(ctx, handles, nil)
	if err != nil {
		return nil, err
	}
	var sources []*node.Node
	for _, n := range plan {
		if n.IsDataSource() {
			sources = append(sources, n)
		}
	}
	return sources, nil
}

// StatefulModules returns every distinct module in the graph that carries
// parameters, keyed by instance name. A different instance reusing a name is
// keyed "<name>#<seq>".
func StatefulModules(ctx context.Context, g graph.Graph) map[string]checkpoint.Stateful {
	out := make(map[string]checkpoint.Stateful)
	owners := make(map[checkpoint.Stateful]struct{})
	for _, n := range g.AllNodes(ctx) {
		s, ok := n.Module.(checkpoint.Stateful)
		if !ok {
			continue
		}
		if _, seen := owners[s]; seen {
			continue
		}
		owners[s] = struct{}{}
		key := n.Name
		if _, taken := out[key]; taken {
			key = fmt.Sprintf("%s#%d", n.Name, n.ID().Seq)
		}
		out[key] = s
	}
	return out
}

func dedupe(groups ...[]nodeid.Handle) []nodeid.Handle {
	seen := make(map[nodeid.Handle]struct{})
	var out []nodeid.Handle
	for _, g := range groups {
		for _, h := range g {
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}

func (d *Dispatcher) validateTargets(ctx context.Context, handles []nodeid.Handle) error {
	for _, h := range handles {
		if _, err := d.graph.NodeOf(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

func names(nodes []*node.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	sort.Strings(out)
	return out
}

func logSources(ctx context.Context, action string, sources []*node.Node) {
	ctxlog.FromContext(ctx).Debug("Data sources resolved.", "action", action, "sources", names(sources), "steps_per_epoch", stepsPerEpoch(sources))
}
