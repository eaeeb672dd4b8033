// cmd/analyzer-service/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-analyzer/internal/api"
	"content-analyzer/internal/bootstrap"
	"content-analyzer/internal/common/camunda"
	"content-analyzer/internal/common/config"
	"content-analyzer/internal/common/logger"
	"content-analyzer/internal/common/observability"
	"content-analyzer/internal/engine"
	"content-analyzer/internal/store"
	analyzecontent "content-analyzer/internal/workers/analysis/analyze-content"
)

// telemetry is what run needs from the observability stack.
type telemetry interface {
	engine.Observer
	analyzecontent.JobRecorder
	Shutdown(ctx context.Context) error
}

var newTelemetry = func(cfg *config.Config) (telemetry, error) {
	return observability.New(observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.App.Version,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	})
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "analyzer-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	log, err := bootstrap.Logger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting analyzer service", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"mode":        cfg.Analyzer.Mode,
		"store":       cfg.Store.Backend,
	})

	obs, err := newTelemetry(cfg)
	if err != nil {
		return fmt.Errorf("observability init failed: %w", err)
	}
	// Flushes pending spans on every exit path, including failed start-up.
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
		defer cancel()
		if err := obs.Shutdown(ctx); err != nil {
			log.Warn("observability shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// A catalog that cannot be loaded is fatal.
	cat, err := bootstrap.Catalog(cfg)
	if err != nil {
		log.Error("scenario catalog failed to load", map[string]interface{}{"error": err.Error()})
		return err
	}
	log.Info("scenario catalog loaded", map[string]interface{}{
		"version":   cat.Version(),
		"scenarios": cat.Len(),
	})

	eng, err := bootstrap.Engine(cfg, cat, log, engine.WithObserver(obs))
	if err != nil {
		return fmt.Errorf("engine init failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	history, err := store.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("analysis store init failed: %w", err)
	}
	defer func() { _ = history.Close() }()

	var (
		zb      *camunda.Client
		workers []*camunda.Worker
	)
	switch {
	case !cfg.Camunda.Enabled:
	case !config.IsWorkerEnabled(cfg, analyzecontent.TaskType):
		log.Info("worker disabled, not connecting to zeebe", map[string]interface{}{"taskType": analyzecontent.TaskType})
	default:
		zb, err = camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda), log)
		if err != nil {
			return fmt.Errorf("zeebe client failed: %w", err)
		}
		log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})
		defer func() {
			if err := zb.Close(); err != nil {
				log.Error("error closing zeebe client", map[string]interface{}{"error": err.Error()})
			}
		}()

		handler, err := analyzecontent.NewHandler(analyzecontent.HandlerOptions{
			AppConfig: cfg,
			Analyzer:  eng,
			Store:     history,
			Recorder:  obs,
			Logger:    log,
		})
		if err != nil {
			return err
		}
		if w := camunda.StartWorker(zb.Zeebe(), analyzecontent.TaskType,
			config.GetWorkerConfig(cfg, analyzecontent.TaskType), handler, log); w != nil {
			workers = append(workers, w)
		}
	}

	srv := api.NewServer(cfg.Server, api.NewRouter(api.Deps{
		Analyzer:       eng,
		Store:          history,
		Logger:         log,
		ServiceName:    cfg.Observability.ServiceName,
		RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
	}))

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	case err := <-serverErr:
		if err != nil {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	if err := shutdown(cfg, log, srv, workers); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if timeout := config.GetDuration(cfg.Server.ShutdownTimeout); timeout > 0 {
		return timeout
	}
	return 30 * time.Second
}

// shutdown stops the HTTP server, then the workers. The zeebe client, the
// store and observability are closed by run's deferred calls afterwards.
func shutdown(cfg *config.Config, log logger.Logger, srv *http.Server, workers []*camunda.Worker) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()

	var firstErr error
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server shutdown failed", map[string]interface{}{"error": err.Error()})
		firstErr = fmt.Errorf("http server shutdown: %w", err)
	}

	for _, w := range workers {
		w.Stop()
	}

	log.Info("analyzer service stopped", nil)
	return firstErr
}
