package repository

import "context"

// ImageDownloader fetches an image and stores it at destPath.
type ImageDownloader interface {
	// Download writes the full response body to destPath and returns the number
	// of bytes written. On error nothing is left at destPath.
	Download(ctx context.Context, url, destPath string) (int64, error)
}
