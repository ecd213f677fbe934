package repository

import (
	"context"

	"github.com/user/catalog-image-sync/internal/entity"
)

// CatalogRepository loads and persists the products document.
type CatalogRepository interface {
	Load(ctx context.Context) (*entity.Catalog, error)
	// Save replaces the stored catalog. Implementations must not leave a
	// partially written document behind on failure.
	Save(ctx context.Context, catalog *entity.Catalog) error
	// Location describes where the catalog lives, for logs and reports.
	Location() string
}
