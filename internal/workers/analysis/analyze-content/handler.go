// internal/workers/analysis/analyze-content/handler.go
package analyzecontent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"content-analyzer/internal/common/config"
	"content-analyzer/internal/common/errors"
	"content-analyzer/internal/common/logger"
	"content-analyzer/internal/common/metrics"
	"content-analyzer/internal/common/validation"
	"content-analyzer/internal/engine"
	"content-analyzer/internal/store"
)

const TaskType = "analyze-content"

// Analyzer runs one analysis.
type Analyzer interface {
	Run(ctx context.Context, text string) (*engine.Result, error)
}

// JobRecorder receives per-job OpenTelemetry measurements.
type JobRecorder interface {
	RecordJobProcessed(ctx context.Context, status string)
	RecordJobDuration(ctx context.Context, duration time.Duration, status string)
}

type Handler struct {
	config     *Config
	analyzer   Analyzer
	store      store.Store
	recorder   JobRecorder
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	schema     *validation.Schema
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Analyzer     Analyzer
	Store        store.Store
	Recorder     JobRecorder
	Logger       logger.Logger
}

type nopRecorder struct{}

func (nopRecorder) RecordJobProcessed(context.Context, string)               {}
func (nopRecorder) RecordJobDuration(context.Context, time.Duration, string) {}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Analyzer == nil {
		return nil, fmt.Errorf("analyze-content requires an analyzer")
	}

	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for analyze-content: %w", err)
	}

	schema, err := validation.Compile(inputSchema(workerConfig.MaxInputLength))
	if err != nil {
		return nil, fmt.Errorf("input schema for %s: %w", TaskType, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	h := &Handler{
		config:     workerConfig,
		analyzer:   opts.Analyzer,
		store:      opts.Store,
		recorder:   opts.Recorder,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
		schema:     schema,
	}
	if h.store == nil {
		h.store = store.NopStore{}
	}
	if h.recorder == nil {
		h.recorder = nopRecorder{}
	}
	return h, nil
}

func (h *Handler) TaskType() string { return TaskType }
func (h *Handler) Config() *Config  { return h.config }
func (h *Handler) IsEnabled() bool  { return h.config.Enabled }

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing analysis job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	output, err := h.process(ctx, job)
	if err != nil {
		code := string(errors.CodeOf(err))
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.recorder.RecordJobProcessed(ctx, "failed")
		h.recorder.RecordJobDuration(ctx, time.Since(startTime), "failed")
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.recorder.RecordJobProcessed(ctx, "completed")
	h.recorder.RecordJobDuration(ctx, time.Since(startTime), "completed")
}

func (h *Handler) process(ctx context.Context, job entities.Job) (*Output, error) {
	input, err := h.parseInput(job.GetVariables())
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, input)
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}

	result, err := h.schema.ValidateString(variables)
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("job variables are not valid JSON: %v", err))
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(result.Error())
	}

	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &vars); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("decode job variables: %v", err))
	}

	input := &Input{Text: vars["text"].(string)}
	if id, ok := vars["requestId"].(string); ok {
		input.RequestID = id
	}
	return input, nil
}

// Execute analyzes the text and records it in the history store. A failed
// save is logged and does not fail the job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.analyzer.Run(ctx, input.Text)
	if err != nil {
		return nil, err
	}

	rec := store.NewRecord(input.Text, res.Mode, res.Source, res.ScenarioID, res.Response)
	if err := h.store.Save(ctx, rec); err != nil {
		h.logger.Warn("failed to save analysis", map[string]interface{}{
			"analysisId": rec.ID,
			"requestId":  input.RequestID,
			"error":      err.Error(),
		})
	}

	h.logger.Info("analysis job complete", map[string]interface{}{
		"analysisId": rec.ID,
		"requestId":  input.RequestID,
		"source":     res.Source,
		"scenarioId": res.ScenarioID,
	})

	return &Output{
		AnalysisID: rec.ID,
		RequestID:  input.RequestID,
		Source:     res.Source,
		ScenarioID: res.ScenarioID,
		Mode:       res.Mode,
		Analysis:   res.Response,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"analysisId": output.AnalysisID,
	})
}
