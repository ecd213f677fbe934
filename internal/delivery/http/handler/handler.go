package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-image-sync/internal/delivery/http/response"
	"github.com/user/catalog-image-sync/internal/repository"
	"github.com/user/catalog-image-sync/internal/usecase"
)

// Pinger is implemented by the optional backends reported on /api/health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	baseCtx context.Context
	runner  *usecase.SyncRunner
	results repository.ResultRepository
	checks  map[string]Pinger
	logger  *zap.Logger
}

// NewHandler wires the API handlers. Runs started through the API are bound
// to baseCtx rather than the request context. results may be nil when no
// ledger is configured.
func NewHandler(baseCtx context.Context, runner *usecase.SyncRunner, results repository.ResultRepository, checks map[string]Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		baseCtx: baseCtx,
		runner:  runner,
		results: results,
		checks:  checks,
		logger:  logger,
	}
}

func (h *Handler) HandleSubmitSync(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.Start(h.baseCtx); err != nil {
		if errors.Is(err, usecase.ErrSyncInProgress) {
			h.writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("Failed to start sync", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.SubmitSyncResponse{
		Status:  "accepted",
		Message: "Sync run started",
	})
}

func (h *Handler) HandleLatestRun(w http.ResponseWriter, r *http.Request) {
	state := h.runner.State()
	if state.LastReport == nil {
		h.writeJSONError(w, "No completed sync run", http.StatusNotFound)
		return
	}

	resp := response.NewRunSummary(state.LastReport)
	resp.Running = state.Running
	resp.RunningSince = state.StartedAt
	resp.LastError = state.LastError
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleProductStatus(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		h.writeJSONError(w, "Result ledger is not configured", http.StatusServiceUnavailable)
		return
	}

	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		h.writeJSONError(w, "product_id query parameter is required", http.StatusBadRequest)
		return
	}

	res, err := h.results.LatestByProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrResultNotFound) {
			h.writeJSONError(w, "No sync result for the given product", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get product status", zap.String("product_id", productID), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.ProductStatusResponse{
		ProductID:   res.ProductID,
		ProductName: res.ProductName,
		RunID:       res.RunID,
		Status:      string(res.Status),
		LocalPath:   res.LocalPath,
		ImageURL:    res.ImageURL,
		SourceURL:   res.SourceURL,
		Error:       res.Error,
	}
	if !res.ProcessedAt.IsZero() {
		processed := res.ProcessedAt
		resp.ProcessedAt = &processed
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := response.HealthResponse{Status: "ok"}
	if len(h.checks) == 0 {
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	resp.Checks = make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("backend", name), zap.Error(err))
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
