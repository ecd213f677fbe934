package repository

import (
	"context"
	"errors"
)

var (
	// ErrMissingAPIKey is returned when no usable search credential is configured.
	// No request is made in that case.
	ErrMissingAPIKey = errors.New("image search API key is not set")
	// ErrNoImageFound is returned when the search succeeded but had no results.
	ErrNoImageFound = errors.New("no image found")
	// ErrSearchFailed wraps transport, status and decoding failures of a search.
	ErrSearchFailed = errors.New("image search failed")
)

// ImageFinder resolves a search query to the URL of a matching image.
type ImageFinder interface {
	FindImage(ctx context.Context, query string) (string, error)
}

// CredentialChecker is implemented by finders that need a credential before
// they can answer. Decorators must consult it before serving stored results.
type CredentialChecker interface {
	CheckCredentials() error
}
