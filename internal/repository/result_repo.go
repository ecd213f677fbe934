package repository

import (
	"context"
	"errors"

	"github.com/user/catalog-image-sync/internal/entity"
)

// ErrResultNotFound is returned when no outcome has been recorded for a product.
var ErrResultNotFound = errors.New("sync result not found")

// ResultRepository stores per-product sync outcomes.
type ResultRepository interface {
	// Save stores the outcome. Saving the same run and product again overwrites it.
	Save(ctx context.Context, result *entity.SyncResult) error
	// LatestByProduct returns the most recent outcome for a product.
	LatestByProduct(ctx context.Context, productID string) (*entity.SyncResult, error)
}
