package response

import (
	"time"

	"github.com/user/catalog-image-sync/internal/entity"
)

type SubmitSyncResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string            `json:"status"` // "ok" or "degraded"
	Checks map[string]string `json:"checks,omitempty"`
}

// RunSummaryResponse is the last completed report without per-product results.
type RunSummaryResponse struct {
	RunID        string     `json:"run_id"`
	ProductsFile string     `json:"products_file"`
	ImagesDir    string     `json:"images_dir"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   time.Time  `json:"finished_at"`
	Total        int        `json:"total"`
	Success      int        `json:"success"`
	Skipped      int        `json:"skipped"`
	Failed       int        `json:"failed"`
	Errors       int        `json:"errors"`
	Running      bool       `json:"running"`
	RunningSince *time.Time `json:"running_since,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}

func NewRunSummary(r *entity.SyncReport) RunSummaryResponse {
	return RunSummaryResponse{
		RunID:        r.RunID,
		ProductsFile: r.ProductsFile,
		ImagesDir:    r.ImagesDir,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		Total:        r.Total,
		Success:      r.Success,
		Skipped:      r.Skipped,
		Failed:       r.Failed,
		Errors:       r.Errors,
	}
}

// ProductStatusResponse mirrors the latest ledger record for one product.
type ProductStatusResponse struct {
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	RunID       string     `json:"run_id"`
	Status      string     `json:"status"`
	LocalPath   string     `json:"local_path"`
	ImageURL    string     `json:"image_url,omitempty"`
	SourceURL   string     `json:"source_url,omitempty"`
	Error       string     `json:"error,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
