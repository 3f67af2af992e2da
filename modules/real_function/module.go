// Package real_function provides a data source sampling a real function of
// one variable.
package real_function

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/specialistvlad/nmgraph/internal/registry"
	"gonum.org/v1/gonum/mat"
)

var functions = map[string]func(float64) float64{
	"sin": math.Sin,
	"cos": math.Cos,
	"exp": math.Exp,
	"square": func(x float64) float64 {
		return x * x
	},
}

// Provider registers the "real_function" module type.
type Provider struct{}

// Input defines the arguments of a real_function data source.
type Input struct {
	N         int     `hcl:"n"`
	BatchSize int     `hcl:"batch_size,optional"`
	FName     string  `hcl:"f_name,optional"`
	XLo       float64 `hcl:"x_lo,optional"`
	XHi       float64 `hcl:"x_hi,optional"`
	Seed      uint64  `hcl:"seed,optional"`
}

// RealFunction yields N pairs (x, f(x)) with x drawn uniformly from
// [XLo, XHi]. Samples are drawn once so every epoch sees the same data.
type RealFunction struct {
	x, y      []float64
	batchSize int
}

var _ registry.DataSource = (*RealFunction)(nil)

// New samples the function. f_name defaults to "sin" and the range to [-4, 4].
func New(in *Input) (*RealFunction, error) {
	if in.N < 0 || in.BatchSize < 0 {
		return nil, errors.New("n and batch_size cannot be negative")
	}
	name := in.FName
	if name == "" {
		name = "sin"
	}
	f, ok := functions[name]
	if !ok {
		return nil, fmt.Errorf("unknown function '%s', expected one of %v", name, FunctionNames())
	}
	lo, hi := in.XLo, in.XHi
	if lo == 0 && hi == 0 {
		lo, hi = -4, 4
	}
	if hi <= lo {
		return nil, fmt.Errorf("x_hi (%g) must be greater than x_lo (%g)", hi, lo)
	}

	rng := rand.New(rand.NewPCG(in.Seed, in.Seed^0x9e3779b97f4a7c15))
	rf := &RealFunction{x: make([]float64, in.N), y: make([]float64, in.N), batchSize: in.BatchSize}
	if rf.batchSize == 0 {
		rf.batchSize = 1
	}
	for i := range rf.x {
		rf.x[i] = lo + (hi-lo)*rng.Float64()
		rf.y[i] = f(rf.x[i])
	}
	return rf, nil
}

// FunctionNames returns the supported function names in sorted order.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for n := range functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (rf *RealFunction) InputPorts() []string  { return nil }
func (rf *RealFunction) OutputPorts() []string { return []string{"x", "y"} }
func (rf *RealFunction) Len() int              { return len(rf.x) }
func (rf *RealFunction) BatchSize() int        { return rf.batchSize }

func (rf *RealFunction) Forward(context.Context, map[string]any) (map[string]any, error) {
	return nil, errors.New("real_function is a data source and is fed by the dispatcher")
}

func (rf *RealFunction) Batches(context.Context) (registry.BatchIterator, error) {
	return &iterator{rf: rf}, nil
}

type iterator struct {
	rf   *RealFunction
	next int
}

func (it *iterator) Next(context.Context) (map[string]any, error) {
	n := len(it.rf.x)
	if it.next >= n {
		return nil, io.EOF
	}
	end := min(it.next+it.rf.batchSize, n)
	x := append([]float64(nil), it.rf.x[it.next:end]...)
	y := append([]float64(nil), it.rf.y[it.next:end]...)
	it.next = end
	return map[string]any{
		"x": mat.NewDense(len(x), 1, x),
		"y": mat.NewDense(len(y), 1, y),
	}, nil
}

func (it *iterator) Close() error { return nil }

// Register registers the module type with the registry.
func (p *Provider) Register(r *registry.Registry) {
	r.Register("real_function", &registry.RegisteredModule{
		NewInput: func() any { return new(Input) },
		New: func(input any) (registry.Module, error) {
			return New(input.(*Input))
		},
	})
}
