// internal/api/handlers.go
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"content-analyzer/internal/classifier"
	"content-analyzer/internal/common/errors"
	"content-analyzer/internal/common/logger"
	"content-analyzer/internal/engine"
	"content-analyzer/internal/models"
	"content-analyzer/internal/store"
	"content-analyzer/pkg/catalog"
)

type handler struct {
	analyzer Analyzer
	store    store.Store
	logger   logger.Logger
	service  string
}

type inputRequest struct {
	Input string `json:"input"`
}

type analyzeResponse struct {
	ID         string                     `json:"id"`
	Source     string                     `json:"source"`
	ScenarioID string                     `json:"scenario_id,omitempty"`
	Mode       string                     `json:"mode"`
	DurationMs int64                      `json:"duration_ms"`
	Response   *models.StructuredResponse `json:"response"`
}

type detectTypeResponse struct {
	Type string `json:"type"`
}

type scenariosResponse struct {
	Version   string            `json:"version"`
	Scenarios []catalog.Example `json:"scenarios"`
}

type analysesResponse struct {
	Analyses []*models.AnalysisRecord `json:"analyses"`
	Count    int                      `json:"count"`
}

// ==========================
// Analysis
// ==========================

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.analyzer.Run(r.Context(), req.Input)
	if err != nil {
		writeError(w, err)
		return
	}

	rec := store.NewRecord(req.Input, res.Mode, res.Source, res.ScenarioID, res.Response)
	// History is best effort; a failed save never costs the caller the result.
	if err := h.store.Save(r.Context(), rec); err != nil {
		h.logger.Warn("failed to save analysis", map[string]interface{}{
			"requestId":  chimiddleware.GetReqID(r.Context()),
			"analysisId": rec.ID,
			"error":      err.Error(),
		})
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		ID:         rec.ID,
		Source:     res.Source,
		ScenarioID: res.ScenarioID,
		Mode:       res.Mode,
		DurationMs: res.Duration.Milliseconds(),
		Response:   res.Response,
	})
}

func (h *handler) detectType(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detectTypeResponse{Type: classifier.DetectInputType(req.Input)})
}

func (h *handler) scenarios(w http.ResponseWriter, r *http.Request) {
	cat := h.analyzer.Catalog()
	writeJSON(w, http.StatusOK, scenariosResponse{
		Version:   cat.Version(),
		Scenarios: cat.Examples(),
	})
}

// ==========================
// Settings
// ==========================

func (h *handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analyzer.Settings().Masked())
}

func (h *handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var u engine.SettingsUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		writeError(w, err)
		return
	}

	s, err := h.analyzer.UpdateSettings(u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Masked())
}

func (h *handler) testSettings(w http.ResponseWriter, r *http.Request) {
	if err := h.analyzer.TestConnection(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"endpoint": h.analyzer.Settings().Endpoint,
	})
}

// ==========================
// History
// ==========================

func (h *handler) listAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, errors.NewInvalidInputError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := h.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysesResponse{Analyses: records, Count: len(records)})
}

func (h *handler) getAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ==========================
// Health
// ==========================

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": h.service})
}

func (h *handler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]interface{}{
		"store":     h.store.Backend(),
		"scenarios": h.analyzer.Catalog().Len(),
		"mode":      h.analyzer.Settings().Mode,
	}
	if err := h.store.Ping(ctx); err != nil {
		body["status"] = "not_ready"
		body["error"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	writeJSON(w, http.StatusOK, body)
}
