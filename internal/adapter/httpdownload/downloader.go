package httpdownload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// HTTPDoer is a minimal interface for HTTP clients
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// UserAgentSource supplies the User-Agent header for each request.
type UserAgentSource interface {
	GetUserAgent() string
}

// Downloader fetches images over HTTP. It implements repository.ImageDownloader.
type Downloader struct {
	client HTTPDoer
	agents UserAgentSource
}

// NewDownloader creates a Downloader. agents may be nil to send Go's default User-Agent.
func NewDownloader(client HTTPDoer, agents UserAgentSource) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{client: client, agents: agents}
}

// Download streams the response body into a temporary file next to destPath
// and renames it into place once complete. The destination directory must exist.
func (d *Downloader) Download(ctx context.Context, url, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	if d.agents != nil {
		req.Header.Set("User-Agent", d.agents.GetUserAgent())
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bad status: %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read image body: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpName, destPath); err != nil {
		return 0, fmt.Errorf("failed to move image into place: %w", err)
	}
	committed = true
	return n, nil
}
