package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/catalog-image-sync/internal/entity"
	"github.com/user/catalog-image-sync/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS image_sync_results (
	run_id       TEXT        NOT NULL,
	product_id   TEXT        NOT NULL,
	product_name TEXT        NOT NULL,
	status       TEXT        NOT NULL,
	query        TEXT        NOT NULL DEFAULT '',
	source_url   TEXT        NOT NULL DEFAULT '',
	local_path   TEXT        NOT NULL,
	image_url    TEXT        NOT NULL DEFAULT '',
	error        TEXT        NOT NULL DEFAULT '',
	processed_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_image_sync_results_product
	ON image_sync_results (product_id, processed_at DESC);
`

// ResultRepoImpl provides a concrete implementation for the ResultRepository interface using PostgreSQL.
type ResultRepoImpl struct {
	db *pgxpool.Pool
}

// NewResultRepo creates a new instance of ResultRepoImpl.
func NewResultRepo(db *pgxpool.Pool) *ResultRepoImpl {
	return &ResultRepoImpl{db: db}
}

// EnsureSchema creates the results table if it does not exist yet.
func (r *ResultRepoImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

func (r *ResultRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Save creates or updates the outcome for a product within a run.
func (r *ResultRepoImpl) Save(ctx context.Context, result *entity.SyncResult) error {
	query := `
		INSERT INTO image_sync_results (run_id, product_id, product_name, status, query, source_url, local_path, image_url, error, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id, product_id) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			status = EXCLUDED.status,
			query = EXCLUDED.query,
			source_url = EXCLUDED.source_url,
			local_path = EXCLUDED.local_path,
			image_url = EXCLUDED.image_url,
			error = EXCLUDED.error,
			processed_at = EXCLUDED.processed_at;
	`
	_, err := r.db.Exec(ctx, query,
		result.RunID,
		result.ProductID,
		result.ProductName,
		string(result.Status),
		result.Query,
		result.SourceURL,
		result.LocalPath,
		result.ImageURL,
		result.Error,
		result.ProcessedAt,
	)
	return err
}

// LatestByProduct retrieves the most recent outcome recorded for a product.
func (r *ResultRepoImpl) LatestByProduct(ctx context.Context, productID string) (*entity.SyncResult, error) {
	query := `
		SELECT run_id, product_id, product_name, status, query, source_url, local_path, image_url, error, processed_at
		FROM image_sync_results
		WHERE product_id = $1
		ORDER BY processed_at DESC
		LIMIT 1;
	`
	var res entity.SyncResult
	var status string
	err := r.db.QueryRow(ctx, query, productID).Scan(
		&res.RunID,
		&res.ProductID,
		&res.ProductName,
		&status,
		&res.Query,
		&res.SourceURL,
		&res.LocalPath,
		&res.ImageURL,
		&res.Error,
		&res.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	res.Status = entity.SyncStatus(status)
	return &res, nil
}
