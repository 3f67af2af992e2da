package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/nmgraph/internal/config"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/pipeline"
	"github.com/specialistvlad/nmgraph/internal/registry"
	"github.com/specialistvlad/nmgraph/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	model      *config.Model
	converter  config.Converter
	sessions   session.SessionFactory
	options    pipeline.Options
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It configures an
// isolated logger, registers the module types and loads the pipeline files.
// Without providers the built-in module types are registered.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, sessions session.SessionFactory, providers ...registry.Provider) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(providers) == 0 {
		providers = coreModules
	}
	for _, p := range providers {
		p.Register(reg)
	}
	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Module types registered.", "types", reg.Types())

	model, converter, err := loader.Load(ctx, cfg.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}
	logger.Debug("Pipeline loaded.", "modules", len(model.Modules), "calls", len(model.Calls))

	return &App{
		outW:      outW,
		ctx:       ctx,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		model:     model,
		converter: converter,
		sessions:  sessions,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// SetPipelineOptions overrides how action blocks are resolved, e.g. to
// register optimizers.
func (a *App) SetPipelineOptions(opts pipeline.Options) {
	a.options = opts
}
