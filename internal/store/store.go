// internal/store/store.go
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"content-analyzer/internal/common/errors"
	"content-analyzer/internal/common/metrics"
	"content-analyzer/internal/models"
)

const (
	BackendNone     = "none"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"

	DefaultRecentLimit = 50
)

// Store keeps completed analyses for lookup and export.
type Store interface {
	Save(ctx context.Context, rec *models.AnalysisRecord) error
	Get(ctx context.Context, id string) (*models.AnalysisRecord, error)
	List(ctx context.Context, limit int) ([]*models.AnalysisRecord, error)
	Ping(ctx context.Context) error
	Backend() string
	Close() error
}

// NewRecord stamps a fresh id and creation time on an analysis outcome.
func NewRecord(input, mode, source, scenarioID string, resp *models.StructuredResponse) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		ID:         uuid.NewString(),
		Input:      input,
		Mode:       mode,
		Source:     source,
		ScenarioID: scenarioID,
		Response:   resp,
		CreatedAt:  time.Now().UTC(),
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func clampLimit(limit, ceiling int) int {
	if limit <= 0 || limit > ceiling {
		return ceiling
	}
	return limit
}

func observe(backend, op string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.HasCode(err, errors.ErrCodeAnalysisNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	metrics.StoreOperations.WithLabelValues(backend, op, outcome).Inc()
}

// NopStore discards records. It backs the "none" backend.
type NopStore struct{}

func (NopStore) Save(context.Context, *models.AnalysisRecord) error {
	observe(BackendNone, "save", nil)
	return nil
}

func (NopStore) Get(_ context.Context, id string) (*models.AnalysisRecord, error) {
	err := errors.NewAnalysisNotFoundError(id)
	observe(BackendNone, "get", err)
	return nil, err
}

func (NopStore) List(context.Context, int) ([]*models.AnalysisRecord, error) {
	observe(BackendNone, "list", nil)
	return []*models.AnalysisRecord{}, nil
}

func (NopStore) Ping(context.Context) error { return nil }
func (NopStore) Backend() string            { return BackendNone }
func (NopStore) Close() error               { return nil }
