package entity

import "time"

// SyncStatus is the per-product outcome of a sync run.
type SyncStatus string

const (
	StatusSuccess SyncStatus = "SUCCESS" // image downloaded
	StatusSkipped SyncStatus = "SKIPPED" // image already on disk
	StatusFailed  SyncStatus = "FAILED"  // no image found, search error or missing credential
	StatusError   SyncStatus = "ERROR"   // image found but download failed
)

// SyncResult records what happened to one product.
type SyncResult struct {
	RunID       string     `json:"run_id"`
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	Status      SyncStatus `json:"status"`
	Query       string     `json:"query,omitempty"`
	SourceURL   string     `json:"source_url,omitempty"`
	LocalPath   string     `json:"local_path"`
	ImageURL    string     `json:"image_url,omitempty"`
	Error       string     `json:"error,omitempty"`
	ProcessedAt time.Time  `json:"processed_at"`
}

// SyncReport summarizes a whole run.
type SyncReport struct {
	RunID        string       `json:"run_id"`
	ProductsFile string       `json:"products_file"`
	ImagesDir    string       `json:"images_dir"`
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at"`
	Total        int          `json:"total"`
	Success      int          `json:"success"`
	Skipped      int          `json:"skipped"`
	Failed       int          `json:"failed"`
	Errors       int          `json:"errors"`
	Results      []SyncResult `json:"results,omitempty"`
}

// Add counts a result towards the report totals.
func (r *SyncReport) Add(res SyncResult) {
	r.Total++
	switch res.Status {
	case StatusSuccess:
		r.Success++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	case StatusError:
		r.Errors++
	}
	r.Results = append(r.Results, res)
}
