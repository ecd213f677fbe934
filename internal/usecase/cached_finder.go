package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-image-sync/internal/repository"
)

type cachedImageFinder struct {
	next   repository.ImageFinder
	cache  repository.SearchCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedImageFinder wraps finder so that found image URLs are remembered
// for ttl. Cache failures are logged and the lookup falls through to finder.
// Negative results are never cached. When finder implements
// repository.CredentialChecker, a failing check is returned before the cache
// is read.
func NewCachedImageFinder(finder repository.ImageFinder, cache repository.SearchCache, ttl time.Duration, logger *zap.Logger) repository.ImageFinder {
	return &cachedImageFinder{next: finder, cache: cache, ttl: ttl, logger: logger}
}

func (f *cachedImageFinder) FindImage(ctx context.Context, query string) (string, error) {
	if checker, ok := f.next.(repository.CredentialChecker); ok {
		if err := checker.CheckCredentials(); err != nil {
			return "", err
		}
	}

	imageURL, ok, err := f.cache.Get(ctx, query)
	if err != nil {
		f.logger.Warn("Search cache lookup failed", zap.String("query", query), zap.Error(err))
	}
	if ok {
		f.logger.Debug("Search cache hit", zap.String("query", query))
		return imageURL, nil
	}

	imageURL, err = f.next.FindImage(ctx, query)
	if err != nil {
		return "", err
	}

	if err := f.cache.Set(ctx, query, imageURL, f.ttl); err != nil {
		f.logger.Warn("Failed to cache search result", zap.String("query", query), zap.Error(err))
	}
	return imageURL, nil
}
