// internal/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"content-analyzer/internal/classifier"
	"content-analyzer/internal/common/agent"
	"content-analyzer/internal/common/errors"
	"content-analyzer/internal/common/logger"
	"content-analyzer/internal/common/metrics"
	"content-analyzer/internal/common/observability"
	"content-analyzer/internal/extractor"
	"content-analyzer/internal/models"
	"content-analyzer/pkg/catalog"
)

// LiveClient forwards text to a remote agent.
type LiveClient interface {
	Analyze(ctx context.Context, endpoint, apiKey, input string) (*models.StructuredResponse, error)
	TestConnection(ctx context.Context, endpoint, apiKey string) error
}

// Observer receives spans and per-analysis measurements.
type Observer interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	RecordAnalysis(ctx context.Context, mode, outcome string, duration time.Duration)
}

// Result is an analysis with its provenance.
type Result struct {
	Response   *models.StructuredResponse
	Source     string
	ScenarioID string
	Mode       string
	Duration   time.Duration
}

// AsyncResult is delivered once on the channel returned by AnalyzeAsync.
type AsyncResult struct {
	Result *Result
	Err    error
}

// Engine routes text to a catalog scenario, the fallback extractor or a live
// agent. It is safe for concurrent use.
type Engine struct {
	catalog   *catalog.Catalog
	extractor *extractor.Extractor
	live      LiveClient
	delayer   Delayer
	observer  Observer
	logger    logger.Logger

	mu       sync.RWMutex
	settings Settings
}

type Option func(*Engine)

func WithDelayer(d Delayer) Option {
	return func(e *Engine) { e.delayer = d }
}

func WithLiveClient(c LiveClient) Option {
	return func(e *Engine) { e.live = c }
}

func WithExtractor(x *extractor.Extractor) Option {
	return func(e *Engine) { e.extractor = x }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithSettings(s Settings) Option {
	return func(e *Engine) { e.settings = s }
}

// New builds an engine over a loaded catalog. Without options it runs in
// simulated mode with the default uniform delay.
func New(cat *catalog.Catalog, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("engine requires a scenario catalog")
	}

	e := &Engine{
		catalog:   cat,
		extractor: extractor.New(),
		live:      agent.NewClient(agent.DefaultTimeout),
		delayer:   NewUniformDelayer(DefaultMinDelay, DefaultMaxDelay),
		observer:  observability.NewNoop(),
		logger:    logger.NewNoOpLogger(),
		settings:  Settings{Mode: ModeSimulated},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.settings.Mode == "" {
		e.settings.Mode = ModeSimulated
	}
	if err := e.settings.validate(); err != nil {
		return nil, err
	}
	e.logger = e.logger.WithFields(map[string]interface{}{"component": "engine"})

	if e.settings.Mode == ModeLive && !e.settings.LiveReady() {
		e.logger.Warn("live mode configured without endpoint or API key; analyses will fail until settings are updated", nil)
	}

	return e, nil
}

// Settings returns a snapshot of the current settings.
func (e *Engine) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// UpdateSettings merges u into the current settings. Calls already running
// keep the snapshot they started with.
func (e *Engine) UpdateSettings(u SettingsUpdate) (Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.settings.apply(u)
	if err := next.validate(); err != nil {
		return e.settings, err
	}
	e.settings = next

	e.logger.Info("settings updated", map[string]interface{}{
		"mode":        next.Mode,
		"endpoint":    next.Endpoint,
		"apiKeyIsSet": next.APIKey != "",
	})
	return next, nil
}

// Analyze returns only the structured response.
func (e *Engine) Analyze(ctx context.Context, text string) (*models.StructuredResponse, error) {
	res, err := e.Run(ctx, text)
	if err != nil {
		return nil, err
	}
	return res.Response, nil
}

// AnalyzeAsync runs the analysis in the background. The channel yields
// exactly one value and is then closed.
func (e *Engine) AnalyzeAsync(ctx context.Context, text string) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	go func() {
		defer close(out)
		res, err := e.Run(ctx, text)
		out <- AsyncResult{Result: res, Err: err}
	}()
	return out
}

// Run performs one analysis against the settings snapshot taken on entry.
func (e *Engine) Run(ctx context.Context, text string) (*Result, error) {
	settings := e.Settings()
	start := time.Now()

	ctx, span := e.observer.StartSpan(ctx, "engine.analyze",
		attribute.String("analysis.mode", settings.Mode),
		attribute.Int("analysis.input_length", utf8.RuneCountInString(text)),
	)
	defer span.End()

	var (
		res *Result
		err error
	)
	if settings.Mode == ModeLive {
		res, err = e.runLive(ctx, settings, text)
	} else {
		res, err = e.runSimulated(ctx, text)
	}

	duration := time.Since(start)
	metrics.AnalysisDuration.WithLabelValues(settings.Mode).Observe(duration.Seconds())

	if err != nil {
		code := string(errors.CodeOf(err))
		metrics.AnalysisFailures.WithLabelValues(settings.Mode, code).Inc()
		e.observer.RecordAnalysis(ctx, settings.Mode, code, duration)
		span.RecordError(err)
		span.SetStatus(codes.Error, code)

		e.logger.Warn("analysis failed", map[string]interface{}{
			"mode":       settings.Mode,
			"errorCode":  code,
			"error":      err.Error(),
			"durationMs": duration.Milliseconds(),
		})
		return nil, err
	}

	res.Mode = settings.Mode
	res.Duration = duration

	metrics.AnalysesTotal.WithLabelValues(settings.Mode, res.Source).Inc()
	if res.ScenarioID != "" {
		metrics.ScenarioHits.WithLabelValues(res.ScenarioID).Inc()
	}
	e.observer.RecordAnalysis(ctx, settings.Mode, res.Source, duration)
	span.SetAttributes(
		attribute.String("analysis.source", res.Source),
		attribute.String("analysis.scenario_id", res.ScenarioID),
	)

	e.logger.Info("analysis complete", map[string]interface{}{
		"mode":       settings.Mode,
		"source":     res.Source,
		"scenarioId": res.ScenarioID,
		"intent":     res.Response.Intent,
		"durationMs": duration.Milliseconds(),
	})
	return res, nil
}

func (e *Engine) runSimulated(ctx context.Context, text string) (*Result, error) {
	if err := e.delayer.Delay(ctx); err != nil {
		return nil, fmt.Errorf("simulated analysis interrupted: %w", err)
	}

	if id, ok := classifier.Classify(text); ok {
		if resp := e.catalog.Response(id); resp != nil {
			return &Result{Response: resp, Source: models.SourceScenario, ScenarioID: id}, nil
		}
		e.logger.Warn("classified scenario missing from catalog, using fallback", map[string]interface{}{
			"scenarioId": id,
		})
	}

	return &Result{Response: e.extractor.Extract(text), Source: models.SourceFallback}, nil
}

func (e *Engine) runLive(ctx context.Context, settings Settings, text string) (*Result, error) {
	if err := agent.RequireConfig(settings.Endpoint, settings.APIKey); err != nil {
		return nil, err
	}

	resp, err := e.live.Analyze(ctx, settings.Endpoint, settings.APIKey, text)
	if err != nil {
		return nil, err
	}
	return &Result{Response: resp, Source: models.SourceLive}, nil
}

// TestConnection checks the configured live endpoint regardless of mode.
func (e *Engine) TestConnection(ctx context.Context) error {
	settings := e.Settings()
	if err := agent.RequireConfig(settings.Endpoint, settings.APIKey); err != nil {
		return err
	}

	err := e.live.TestConnection(ctx, settings.Endpoint, settings.APIKey)
	if err != nil {
		e.logger.Warn("live connection test failed", map[string]interface{}{
			"endpoint":  settings.Endpoint,
			"errorCode": string(errors.CodeOf(err)),
		})
		return err
	}

	e.logger.Info("live connection test succeeded", map[string]interface{}{
		"endpoint": settings.Endpoint,
	})
	return nil
}

// Catalog exposes the read-only scenario catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}
