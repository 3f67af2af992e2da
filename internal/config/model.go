package config

import (
	"fmt"
)

// Model is the unified representation of one pipeline: module instances,
// the calls wiring them into a graph, and at most one action of each kind.
type Model struct {
	Modules []*Module
	Calls   []*Call
	Infer   *Infer
	Train   *Train
}

// Ref points at an output port of a call: `call.<Call>.<Port>`.
type Ref struct {
	Call string
	Port string
}

func (r Ref) String() string {
	return fmt.Sprintf("call.%s.%s", r.Call, r.Port)
}

// Module declares one module instance. Body holds the format-specific
// argument body that a Converter decodes.
type Module struct {
	Type string
	Name string
	Body any
	// Source locates the declaration for error messages.
	Source string
}

// Call invokes a module instance on the outputs of earlier calls.
type Call struct {
	Name   string
	Module string
	Inputs map[string]Ref
	Source string
}

// Infer configures the infer action.
type Infer struct {
	Targets       []Ref
	Cache         bool
	UseCache      bool
	CheckpointDir string
}

// Train configures the train action.
type Train struct {
	Losses         []Ref
	NumEpochs      int
	MaxSteps       int
	LR             float64
	Optimizer      string
	BatchesPerStep int

	LRPolicy   *LRPolicy
	LossLogger *LossLogger
	Checkpoint *Checkpoint
	Evaluators []*Evaluator
	SocketIO   *SocketIO
}

// LRPolicy selects a learning-rate schedule by name.
type LRPolicy struct {
	Name        string
	WarmupSteps int
	WarmupRatio float64
	MinLR       float64
}

// LossLogger logs tensors every StepFreq steps.
type LossLogger struct {
	Tensors  []Ref
	StepFreq int
}

// Checkpoint saves module parameters to Folder, optionally mirrored to a
// Cloud Storage bucket.
type Checkpoint struct {
	Folder         string
	StepFreq       int
	EpochFreq      int
	LoadFromFolder bool
	Bucket         string
	Prefix         string
}

// Evaluator runs Tensors over their own data every EvalStep steps.
type Evaluator struct {
	Name     string
	Tensors  []Ref
	EvalStep int
}

// SocketIO streams training metrics to a socket.io server.
type SocketIO struct {
	URL                string
	Namespace          string
	Event              string
	Tensors            []Ref
	StepFreq           int
	InsecureSkipVerify bool
}
