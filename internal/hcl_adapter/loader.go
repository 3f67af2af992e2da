package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/nmgraph/internal/config"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// Env is exposed to expressions as `env.<NAME>`. Nil means the process
	// environment.
	Env map[string]string
}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found under the given paths and merges their
// blocks into one model. Module and call names must be unique across files,
// and there can be at most one infer and one train block.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no .hcl files found in %s", strings.Join(paths, ", "))
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	evalCtx := l.evalContext()
	parser := hclparse.NewParser()
	model := &config.Model{}
	modules := make(map[string]string)
	calls := make(map[string]string)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, m := range root.Modules {
			src := m.Arguments.MissingItemRange().String()
			if prev, dup := modules[m.Name]; dup {
				return nil, nil, fmt.Errorf("module '%s' declared twice: %s and %s", m.Name, prev, src)
			}
			modules[m.Name] = src
			model.Modules = append(model.Modules, &config.Module{Type: m.Type, Name: m.Name, Body: m.Arguments, Source: src})
		}
		for _, c := range root.Calls {
			call, err := l.translateCall(ctx, c)
			if err != nil {
				return nil, nil, err
			}
			if prev, dup := calls[call.Name]; dup {
				return nil, nil, fmt.Errorf("call '%s' declared twice: %s and %s", call.Name, prev, call.Source)
			}
			calls[call.Name] = call.Source
			model.Calls = append(model.Calls, call)
		}
		for _, b := range root.Infer {
			if model.Infer != nil {
				return nil, nil, fmt.Errorf("%s: only one infer block is allowed", file)
			}
			if model.Infer, err = l.translateInfer(b); err != nil {
				return nil, nil, err
			}
		}
		for _, b := range root.Train {
			if model.Train != nil {
				return nil, nil, fmt.Errorf("%s: only one train block is allowed", file)
			}
			if model.Train, err = l.translateTrain(ctx, b); err != nil {
				return nil, nil, err
			}
		}
	}

	logger.Debug("HCL loading complete.", "modules", len(model.Modules), "calls", len(model.Calls), "infer", model.Infer != nil, "train", model.Train != nil)
	return model, NewConverter(evalCtx), nil
}

func (l *Loader) evalContext() *hcl.EvalContext {
	env := l.Env
	if env == nil {
		env = make(map[string]string)
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				env[k] = v
			}
		}
	}
	vals := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vals[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vals)},
	}
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found, without duplicates.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return allFiles, nil
}
