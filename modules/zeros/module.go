// Package zeros provides a data source that yields batches of zeros.
package zeros

import (
	"context"
	"errors"
	"io"

	"github.com/specialistvlad/nmgraph/internal/registry"
	"gonum.org/v1/gonum/mat"
)

// Provider registers the "zeros" module type.
type Provider struct{}

// Input defines the arguments of a zeros data source.
type Input struct {
	Size      int    `hcl:"size"`
	BatchSize int    `hcl:"batch_size,optional"`
	Dim       int    `hcl:"dim,optional"`
	Port      string `hcl:"port,optional"`
}

// Zeros yields Size rows of Dim zeros, BatchSize rows at a time.
type Zeros struct {
	size, batchSize, dim int
	port                 string
}

var _ registry.DataSource = (*Zeros)(nil)

// New creates a zeros data source. Zero values default to a batch size of 1,
// a width of 1 and the port "dl_out".
func New(in *Input) (*Zeros, error) {
	if in.Size < 0 || in.BatchSize < 0 || in.Dim < 0 {
		return nil, errors.New("size, batch_size and dim cannot be negative")
	}
	z := &Zeros{size: in.Size, batchSize: in.BatchSize, dim: in.Dim, port: in.Port}
	if z.batchSize == 0 {
		z.batchSize = 1
	}
	if z.dim == 0 {
		z.dim = 1
	}
	if z.port == "" {
		z.port = "dl_out"
	}
	return z, nil
}

func (z *Zeros) InputPorts() []string  { return nil }
func (z *Zeros) OutputPorts() []string { return []string{z.port} }
func (z *Zeros) Len() int              { return z.size }
func (z *Zeros) BatchSize() int        { return z.batchSize }

func (z *Zeros) Forward(context.Context, map[string]any) (map[string]any, error) {
	return nil, errors.New("zeros is a data source and is fed by the dispatcher")
}

func (z *Zeros) Batches(context.Context) (registry.BatchIterator, error) {
	return &iterator{z: z}, nil
}

type iterator struct {
	z    *Zeros
	next int
}

func (it *iterator) Next(context.Context) (map[string]any, error) {
	if it.next >= it.z.size {
		return nil, io.EOF
	}
	rows := min(it.z.batchSize, it.z.size-it.next)
	it.next += rows
	return map[string]any{it.z.port: mat.NewDense(rows, it.z.dim, nil)}, nil
}

func (it *iterator) Close() error { return nil }

// Register registers the module type with the registry.
func (p *Provider) Register(r *registry.Registry) {
	r.Register("zeros", &registry.RegisteredModule{
		NewInput: func() any { return new(Input) },
		New: func(input any) (registry.Module, error) {
			return New(input.(*Input))
		},
	})
}
