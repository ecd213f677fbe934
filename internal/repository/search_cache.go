package repository

import (
	"context"
	"time"
)

// SearchCache remembers image URLs previously returned for a query.
type SearchCache interface {
	// Get returns the cached URL and true, or "" and false on a miss.
	Get(ctx context.Context, query string) (string, bool, error)
	Set(ctx context.Context, query, imageURL string, ttl time.Duration) error
}
