package testutil

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/specialistvlad/nmgraph/internal/registry"
)

// Source is a data source that yields one batch per entry of Values on a
// single output port.
type Source struct {
	Port   string
	Values []any
	// Opened counts calls to Batches.
	Opened atomic.Int32
}

// NewSource creates a source on port "dl_out".
func NewSource(values ...any) *Source {
	return &Source{Port: "dl_out", Values: values}
}

func (s *Source) InputPorts() []string  { return nil }
func (s *Source) OutputPorts() []string { return []string{s.Port} }
func (s *Source) Len() int              { return len(s.Values) }
func (s *Source) BatchSize() int        { return 1 }

func (s *Source) Forward(context.Context, map[string]any) (map[string]any, error) {
	return nil, fmt.Errorf("data source forward must not be called")
}

func (s *Source) Batches(context.Context) (registry.BatchIterator, error) {
	s.Opened.Add(1)
	return &sourceIter{s: s}, nil
}

type sourceIter struct {
	s *Source
	i int
}

func (it *sourceIter) Next(context.Context) (map[string]any, error) {
	if it.i >= len(it.s.Values) {
		return nil, io.EOF
	}
	v := it.s.Values[it.i]
	it.i++
	return map[string]any{it.s.Port: v}, nil
}

func (it *sourceIter) Close() error { return nil }

// AddConst adds Value to a float64 input on "mod_in" and returns it on
// "mod_out". Calls counts Forward invocations.
type AddConst struct {
	Value float64
	Calls atomic.Int32
}

func (m *AddConst) InputPorts() []string  { return []string{"mod_in"} }
func (m *AddConst) OutputPorts() []string { return []string{"mod_out"} }

func (m *AddConst) Forward(_ context.Context, in map[string]any) (map[string]any, error) {
	m.Calls.Add(1)
	x, ok := in["mod_in"].(float64)
	if !ok {
		return nil, fmt.Errorf("mod_in: expected float64, got %T", in["mod_in"])
	}
	return map[string]any{"mod_out": x + m.Value}, nil
}

// Sum adds its "a" and "b" float64 inputs.
type Sum struct {
	Calls atomic.Int32
}

func (m *Sum) InputPorts() []string  { return []string{"a", "b"} }
func (m *Sum) OutputPorts() []string { return []string{"sum"} }

func (m *Sum) Forward(_ context.Context, in map[string]any) (map[string]any, error) {
	m.Calls.Add(1)
	return map[string]any{"sum": in["a"].(float64) + in["b"].(float64)}, nil
}

// Failing returns Err from Forward.
type Failing struct {
	Err error
}

func (m *Failing) InputPorts() []string  { return []string{"mod_in"} }
func (m *Failing) OutputPorts() []string { return []string{"mod_out"} }

func (m *Failing) Forward(context.Context, map[string]any) (map[string]any, error) {
	return nil, m.Err
}

// Incomplete declares two outputs but only returns one.
type Incomplete struct{}

func (Incomplete) InputPorts() []string  { return []string{"mod_in"} }
func (Incomplete) OutputPorts() []string { return []string{"a", "b"} }

func (Incomplete) Forward(_ context.Context, in map[string]any) (map[string]any, error) {
	return map[string]any{"a": in["mod_in"]}, nil
}
