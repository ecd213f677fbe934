package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/catalog-image-sync/pkg/utils"
)

const searchKeyPrefix = "imagesync:search:"

// SearchCacheImpl provides a concrete implementation for the SearchCache interface using Redis.
type SearchCacheImpl struct {
	client *redis.Client
	scope  string
}

// NewSearchCache creates a new instance of SearchCacheImpl. scope names the
// search settings the cached URLs depend on (orientation, size); entries
// written under one scope are never returned under another.
func NewSearchCache(client *redis.Client, scope string) *SearchCacheImpl {
	return &SearchCacheImpl{client: client, scope: scope}
}

// generateKey creates a consistent Redis key for a query by hashing it together with the scope.
func (r *SearchCacheImpl) generateKey(query string) string {
	return fmt.Sprintf("%s%s", searchKeyPrefix, utils.HashKey(r.scope+"\x00"+query))
}

// Get returns the image URL cached for query.
func (r *SearchCacheImpl) Get(ctx context.Context, query string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.generateKey(query)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set caches imageURL for query. SETEX is atomic and sets the key with an expiry.
func (r *SearchCacheImpl) Set(ctx context.Context, query, imageURL string, ttl time.Duration) error {
	return r.client.SetEx(ctx, r.generateKey(query), imageURL, ttl).Err()
}

func (r *SearchCacheImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
