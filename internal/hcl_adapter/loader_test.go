package hcl_adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/nmgraph/internal/config"
	"github.com/specialistvlad/nmgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addTenHCL = `
module "zeros" "data" {
  size = 1
}

module "add_const" "addten" {
  value = 10
}

call "zero" {
  module = "data"
}

call "ten" {
  module = "addten"
  inputs = { mod_in = call.zero.dl_out }
}

call "twenty" {
  module = "addten"
  inputs = {
    "mod_in" = call.ten.mod_out
  }
}

infer {
  targets   = [call.twenty.mod_out, call.ten.mod_out]
  cache     = true
}
`

const trainHCL = `
train {
  losses           = [call.loss.loss]
  max_steps        = 100
  lr               = 0.01
  batches_per_step = 2

  lr_policy {
    name         = "CosineAnnealing"
    warmup_ratio = 0.1
  }
  loss_logger {
    tensors   = [call.loss.loss]
    step_freq = 25
  }
  checkpoint {
    folder    = env.CKPT_DIR
    step_freq = 50
  }
  evaluator "dev" {
    tensors   = [call.dev_loss.loss]
    eval_step = 10
  }
  socketio {
    url   = "http://localhost:3000/"
    event = "metrics"
  }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoader_AddTenPipeline(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	writeFile(t, dir, "pipeline.hcl", addTenHCL)
	writeFile(t, dir, "notes.txt", "ignored")

	model, conv, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.NotNil(t, conv)

	require.Len(t, model.Modules, 2)
	assert.Equal(t, "zeros", model.Modules[0].Type)
	assert.Equal(t, "addten", model.Modules[1].Name)

	require.Len(t, model.Calls, 3)
	assert.Empty(t, model.Calls[0].Inputs)
	assert.Equal(t, map[string]config.Ref{"mod_in": {Call: "zero", Port: "dl_out"}}, model.Calls[1].Inputs)
	assert.Equal(t, map[string]config.Ref{"mod_in": {Call: "ten", Port: "mod_out"}}, model.Calls[2].Inputs)

	require.NotNil(t, model.Infer)
	assert.Equal(t, []config.Ref{{Call: "twenty", Port: "mod_out"}, {Call: "ten", Port: "mod_out"}}, model.Infer.Targets)
	assert.True(t, model.Infer.Cache)
	assert.False(t, model.Infer.UseCache)
	assert.Nil(t, model.Train)
}

func TestLoader_TrainBlock(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	p := writeFile(t, dir, "train.hcl", trainHCL)

	l := &Loader{Env: map[string]string{"CKPT_DIR": "/tmp/ckpt"}}
	model, _, err := l.Load(ctx, p)
	require.NoError(t, err)

	tr := model.Train
	require.NotNil(t, tr)
	assert.Equal(t, []config.Ref{{Call: "loss", Port: "loss"}}, tr.Losses)
	assert.Equal(t, 100, tr.MaxSteps)
	assert.Equal(t, 0.01, tr.LR)
	assert.Equal(t, 2, tr.BatchesPerStep)
	assert.Equal(t, &config.LRPolicy{Name: "CosineAnnealing", WarmupRatio: 0.1}, tr.LRPolicy)
	assert.Equal(t, 25, tr.LossLogger.StepFreq)
	assert.Equal(t, "/tmp/ckpt", tr.Checkpoint.Folder)
	assert.Equal(t, 50, tr.Checkpoint.StepFreq)
	require.Len(t, tr.Evaluators, 1)
	assert.Equal(t, "dev", tr.Evaluators[0].Name)
	assert.Equal(t, 10, tr.Evaluators[0].EvalStep)
	assert.Equal(t, "metrics", tr.SocketIO.Event)
	assert.Empty(t, tr.SocketIO.Tensors)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "not a reference",
			files:   map[string]string{"a.hcl": `infer { targets = ["call.x.y"] }`},
			wantErr: "expected a reference like call.<name>.<port>",
		},
		{
			name:    "wrong root",
			files:   map[string]string{"a.hcl": `infer { targets = [module.x.y] }`},
			wantErr: "expected a reference",
		},
		{
			name: "duplicate call across files",
			files: map[string]string{
				"a.hcl":     `call "x" { module = "m" }`,
				"sub/b.hcl": `call "x" { module = "m" }`,
			},
			wantErr: "call 'x' declared twice",
		},
		{
			name:    "duplicate module",
			files:   map[string]string{"a.hcl": "module \"t\" \"m\" {}\nmodule \"t\" \"m\" {}"},
			wantErr: "module 'm' declared twice",
		},
		{
			name:    "two infer blocks",
			files:   map[string]string{"a.hcl": "infer { targets = [] }\ninfer { targets = [] }"},
			wantErr: "only one infer block",
		},
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `call "x" {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "port bound twice",
			files:   map[string]string{"a.hcl": "call \"x\" {\n  module = \"m\"\n  inputs = { a = call.y.z, a = call.y.w }\n}"},
			wantErr: "bound twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := testutil.Context(t)
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}
			_, _, err := NewLoader().Load(ctx, dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoader_MissingPaths(t *testing.T) {
	ctx, _ := testutil.Context(t)
	_, _, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "error accessing path")

	_, _, err = NewLoader().Load(ctx, t.TempDir())
	assert.ErrorContains(t, err, "no .hcl files found")
}
