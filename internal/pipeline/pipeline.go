package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/nmgraph/internal/callback"
	"github.com/specialistvlad/nmgraph/internal/config"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/dag"
	"github.com/specialistvlad/nmgraph/internal/dispatcher"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/registry"
	"github.com/specialistvlad/nmgraph/internal/session"
)

// DialFunc connects a socket.io emitter.
type DialFunc func(ctx context.Context, url, namespace string, insecureSkipVerify bool) (callback.Emitter, error)

// Options tune how action blocks are resolved.
type Options struct {
	// Optimizers maps the names accepted by `train.optimizer`. "none" and the
	// empty name always select a dispatcher.NoopOptimizer.
	Optimizers map[string]dispatcher.Optimizer
	// Dial connects the socketio callback. Defaults to callback.DialSocketIO.
	Dial DialFunc
}

// Pipeline is a model whose calls have been invoked on a session graph.
type Pipeline struct {
	model   *config.Model
	session session.Session
	opts    Options

	modules map[string]registry.Module
	outputs map[string]map[string]nodeid.Handle
}

// Build instantiates every module, then invokes every call on the session's
// graph in dependency order. Calls that reference unknown calls, unknown
// ports or each other in a cycle are rejected before anything is invoked.
func Build(
	ctx context.Context,
	model *config.Model,
	conv config.Converter,
	reg *registry.Registry,
	sess session.Session,
	opts Options,
) (*Pipeline, error) {
	logger := ctxlog.FromContext(ctx)
	p := &Pipeline{
		model:   model,
		session: sess,
		opts:    opts,
		modules: make(map[string]registry.Module, len(model.Modules)),
		outputs: make(map[string]map[string]nodeid.Handle, len(model.Calls)),
	}

	for _, decl := range model.Modules {
		m, err := instantiate(ctx, decl, conv, reg)
		if err != nil {
			return nil, err
		}
		p.modules[decl.Name] = m
	}
	logger.Debug("Modules instantiated.", "count", len(p.modules))

	order, err := orderCalls(model.Calls)
	if err != nil {
		return nil, err
	}

	calls := make(map[string]*config.Call, len(model.Calls))
	for _, c := range model.Calls {
		calls[c.Name] = c
	}
	for _, name := range order {
		if err := p.invoke(ctx, calls[name]); err != nil {
			return nil, err
		}
	}
	logger.Debug("Calls invoked.", "count", len(order), "nodes", sess.Graph().Len(ctx))
	return p, nil
}

func instantiate(ctx context.Context, decl *config.Module, conv config.Converter, reg *registry.Registry) (registry.Module, error) {
	rm, ok := reg.Lookup(decl.Type)
	if !ok {
		return nil, fmt.Errorf("module '%s' at %s: unknown module type '%s', expected one of: %s", decl.Name, decl.Source, decl.Type, strings.Join(reg.Types(), ", "))
	}
	var input any
	if rm.NewInput != nil {
		input = rm.NewInput()
	}
	if err := conv.DecodeArguments(ctx, decl, input); err != nil {
		return nil, err
	}
	m, err := reg.Instantiate(decl.Type, input)
	if err != nil {
		return nil, fmt.Errorf("module '%s' at %s: %w", decl.Name, decl.Source, err)
	}
	return m, nil
}

func orderCalls(calls []*config.Call) ([]string, error) {
	g := dag.New()
	for _, c := range calls {
		g.AddNode(c.Name)
	}
	for _, c := range calls {
		for port, ref := range c.Inputs {
			if !g.Has(ref.Call) {
				return nil, fmt.Errorf("call '%s' at %s: input '%s' references unknown call '%s'", c.Name, c.Source, port, ref.Call)
			}
			if err := g.AddEdge(ref.Call, c.Name); err != nil {
				return nil, fmt.Errorf("call '%s' at %s: %w", c.Name, c.Source, err)
			}
		}
	}
	order, err := g.Sort()
	if err != nil {
		return nil, fmt.Errorf("calls: %w", err)
	}
	return order, nil
}

func (p *Pipeline) invoke(ctx context.Context, c *config.Call) error {
	m, ok := p.modules[c.Module]
	if !ok {
		return fmt.Errorf("call '%s' at %s: unknown module '%s'", c.Name, c.Source, c.Module)
	}
	inputs := make(map[string]nodeid.Handle, len(c.Inputs))
	for port, ref := range c.Inputs {
		h, err := p.Handle(ref)
		if err != nil {
			return fmt.Errorf("call '%s' at %s: input '%s': %w", c.Name, c.Source, port, err)
		}
		inputs[port] = h
	}

	handles, err := p.session.Graph().Invoke(ctx, c.Module, m, inputs)
	if err != nil {
		return fmt.Errorf("call '%s' at %s: %w", c.Name, c.Source, err)
	}
	ports := make(map[string]nodeid.Handle, len(handles))
	for i, port := range m.OutputPorts() {
		ports[port] = handles[i]
	}
	p.outputs[c.Name] = ports
	ctxlog.FromContext(ctx).Debug("Call invoked.", "call", c.Name, "module", c.Module, "outputs", len(ports))
	return nil
}

// Handle resolves a reference to an output handle of the graph.
func (p *Pipeline) Handle(ref config.Ref) (nodeid.Handle, error) {
	ports, ok := p.outputs[ref.Call]
	if !ok {
		return nodeid.Handle{}, fmt.Errorf("'%s': unknown call '%s'", ref, ref.Call)
	}
	h, ok := ports[ref.Port]
	if !ok {
		return nodeid.Handle{}, fmt.Errorf("'%s': call '%s' has no output port '%s'", ref, ref.Call, ref.Port)
	}
	return h, nil
}

func (p *Pipeline) handles(refs []config.Ref) ([]nodeid.Handle, []string, error) {
	hs := make([]nodeid.Handle, 0, len(refs))
	labels := make([]string, 0, len(refs))
	for _, r := range refs {
		h, err := p.Handle(r)
		if err != nil {
			return nil, nil, err
		}
		hs = append(hs, h)
		labels = append(labels, r.Call+"."+r.Port)
	}
	return hs, labels, nil
}

// Session returns the session the pipeline was built on.
func (p *Pipeline) Session() session.Session {
	return p.session
}

// Module returns a module instance by its declared name.
func (p *Pipeline) Module(name string) (registry.Module, bool) {
	m, ok := p.modules[name]
	return m, ok
}

// HasInfer reports whether the model declares an infer block.
func (p *Pipeline) HasInfer() bool {
	return p.model.Infer != nil
}

// HasTrain reports whether the model declares a train block.
func (p *Pipeline) HasTrain() bool {
	return p.model.Train != nil
}
