package repository

import (
	"context"
	"io"
)

// ImageMirror copies downloaded images to secondary storage.
type ImageMirror interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}
