package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/metrics"
	"github.com/specialistvlad/arcaneflow/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	model      *config.Model
	converter  config.Converter
	metrics    *metrics.Prometheus
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads the pipeline
// definition and returns an App with its own isolated logger, registry and
// metrics. When no modules are given the core modules are registered.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger, err := newLogger(cfg, outW)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, converter, err := loader.Load(ctx, cfg.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline definition: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.",
		"sources", len(model.Sources), "steps", len(model.Steps), "sinks", len(model.Sinks))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "kinds", reg.Len())

	if err := reg.ValidateRegistry(ctx); err != nil {
		// This is a programmer error (a module with a broken input struct), so we panic.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	prom, err := metrics.NewPrometheus()
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		model:     model,
		converter: converter,
		metrics:   prom,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the application's metrics collector.
func (a *App) Metrics() *metrics.Prometheus {
	return a.metrics
}

// env is what modules see of the app: where to print and where relative
// paths in the definition are resolved from.
func (a *App) env() *registry.Env {
	base := a.config.PipelinePath
	if info, err := os.Stat(base); err != nil || !info.IsDir() {
		base = filepath.Dir(base)
	}
	return &registry.Env{Out: a.outW, BaseDir: base}
}
