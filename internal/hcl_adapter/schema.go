package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Modules []*ModuleBlock `hcl:"module,block"`
	Calls   []*CallBlock   `hcl:"call,block"`
	Infer   []*InferBlock  `hcl:"infer,block"`
	Train   []*TrainBlock  `hcl:"train,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

// ModuleBlock is `module "<type>" "<name>" { ...arguments }`.
type ModuleBlock struct {
	Type      string   `hcl:"type,label"`
	Name      string   `hcl:"name,label"`
	Arguments hcl.Body `hcl:",remain"`
}

// CallBlock is `call "<name>" { module = "..." inputs = { port = call.x.y } }`.
type CallBlock struct {
	Name   string         `hcl:"name,label"`
	Module string         `hcl:"module"`
	Inputs hcl.Expression `hcl:"inputs,optional"`
	Remain hcl.Body       `hcl:",remain"`
}

type InferBlock struct {
	Targets       hcl.Expression `hcl:"targets"`
	Cache         bool           `hcl:"cache,optional"`
	UseCache      bool           `hcl:"use_cache,optional"`
	CheckpointDir string         `hcl:"checkpoint_dir,optional"`
}

type TrainBlock struct {
	Losses         hcl.Expression `hcl:"losses"`
	NumEpochs      int            `hcl:"num_epochs,optional"`
	MaxSteps       int            `hcl:"max_steps,optional"`
	LR             float64        `hcl:"lr,optional"`
	Optimizer      string         `hcl:"optimizer,optional"`
	BatchesPerStep int            `hcl:"batches_per_step,optional"`

	LRPolicy   *LRPolicyBlock    `hcl:"lr_policy,block"`
	LossLogger *LossLoggerBlock  `hcl:"loss_logger,block"`
	Checkpoint *CheckpointBlock  `hcl:"checkpoint,block"`
	Evaluators []*EvaluatorBlock `hcl:"evaluator,block"`
	SocketIO   *SocketIOBlock    `hcl:"socketio,block"`
}

type LRPolicyBlock struct {
	Name        string  `hcl:"name"`
	WarmupSteps int     `hcl:"warmup_steps,optional"`
	WarmupRatio float64 `hcl:"warmup_ratio,optional"`
	MinLR       float64 `hcl:"min_lr,optional"`
}

type LossLoggerBlock struct {
	Tensors  hcl.Expression `hcl:"tensors"`
	StepFreq int            `hcl:"step_freq,optional"`
}

type CheckpointBlock struct {
	Folder         string `hcl:"folder"`
	StepFreq       int    `hcl:"step_freq,optional"`
	EpochFreq      int    `hcl:"epoch_freq,optional"`
	LoadFromFolder bool   `hcl:"load_from_folder,optional"`
	Bucket         string `hcl:"bucket,optional"`
	Prefix         string `hcl:"prefix,optional"`
}

type EvaluatorBlock struct {
	Name     string         `hcl:"name,label"`
	Tensors  hcl.Expression `hcl:"tensors"`
	EvalStep int            `hcl:"eval_step"`
}

type SocketIOBlock struct {
	URL                string         `hcl:"url"`
	Namespace          string         `hcl:"namespace,optional"`
	Event              string         `hcl:"event,optional"`
	Tensors            hcl.Expression `hcl:"tensors,optional"`
	StepFreq           int            `hcl:"step_freq,optional"`
	InsecureSkipVerify bool           `hcl:"insecure_skip_verify,optional"`
}
