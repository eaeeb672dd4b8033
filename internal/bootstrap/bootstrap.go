// Package bootstrap assembles the analyzer from loaded configuration. Both
// the service and the CLI start here.
package bootstrap

import (
	"fmt"

	"content-analyzer/internal/common/agent"
	"content-analyzer/internal/common/config"
	"content-analyzer/internal/common/logger"
	"content-analyzer/internal/engine"
	"content-analyzer/pkg/catalog"
)

// Logger builds the structured logger described by cfg.Logging.
func Logger(cfg *config.Config) (logger.Logger, error) {
	zl, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.NewZapAdapter(zl).Named(cfg.App.Name), nil
}

// Catalog loads the configured catalog, or the embedded one when no path is
// set. Any failure carries FIXTURE_LOAD_FAILURE.
func Catalog(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.Load(cfg.Analyzer.CatalogPath)
}

// Settings seeds the engine settings from the analyzer section.
func Settings(cfg *config.Config) engine.Settings {
	return engine.Settings{
		Mode:     cfg.Analyzer.Mode,
		Endpoint: cfg.Analyzer.Endpoint,
		APIKey:   cfg.Analyzer.APIKey,
	}
}

// Engine wires the catalog, delay, live client and settings from cfg. Extra
// options are applied last.
func Engine(cfg *config.Config, cat *catalog.Catalog, log logger.Logger, extra ...engine.Option) (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithSettings(Settings(cfg)),
		engine.WithDelayer(engine.NewUniformDelayer(
			config.GetDuration(cfg.Analyzer.MinDelayMs),
			config.GetDuration(cfg.Analyzer.MaxDelayMs),
		)),
		engine.WithLiveClient(agent.NewClient(cfg.Analyzer.LiveTimeout())),
		engine.WithLogger(log),
	}
	return engine.New(cat, append(opts, extra...)...)
}
