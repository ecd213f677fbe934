package usecase

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/user/catalog-image-sync/internal/entity"
	"github.com/user/catalog-image-sync/internal/repository"
)

// fakeFinder answers from a fixed query -> url map. Unknown queries return
// ErrNoImageFound unless err is set.
type fakeFinder struct {
	mu      sync.Mutex
	urls    map[string]string
	err     error
	queries []string
}

func (f *fakeFinder) FindImage(ctx context.Context, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return "", f.err
	}
	if u, ok := f.urls[query]; ok {
		return u, nil
	}
	return "", repository.ErrNoImageFound
}

func (f *fakeFinder) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// fakeDownloader writes fixed bytes, or fails for the urls listed in failing.
type fakeDownloader struct {
	mu      sync.Mutex
	content []byte
	failing map[string]bool
	urls    []string
}

func (d *fakeDownloader) Download(ctx context.Context, url, destPath string) (int64, error) {
	d.mu.Lock()
	d.urls = append(d.urls, url)
	d.mu.Unlock()

	if d.failing[url] {
		return 0, errors.New("connection reset by peer")
	}
	if err := os.WriteFile(destPath, d.content, 0o644); err != nil {
		return 0, err
	}
	return int64(len(d.content)), nil
}

func (d *fakeDownloader) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.urls)
}

type fakeResultRepo struct {
	mu      sync.Mutex
	saved   []entity.SyncResult
	saveErr error
}

func (r *fakeResultRepo) Save(ctx context.Context, result *entity.SyncResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, *result)
	return nil
}

func (r *fakeResultRepo) LatestByProduct(ctx context.Context, productID string) (*entity.SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].ProductID == productID {
			res := r.saved[i]
			return &res, nil
		}
	}
	return nil, repository.ErrResultNotFound
}

type fakeMirror struct {
	mu      sync.Mutex
	objects map[string]string
	err     error
}

func (m *fakeMirror) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if m.err != nil {
		return m.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string]string)
	}
	m.objects[key] = contentType + ":" + string(b)
	return nil
}

type fakeCache struct {
	entries map[string]string
	getErr  error
	setErr  error
	sets    int
}

func (c *fakeCache) Get(ctx context.Context, query string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	u, ok := c.entries[query]
	return u, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, query, imageURL string, ttl time.Duration) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	if c.entries == nil {
		c.entries = make(map[string]string)
	}
	c.entries[query] = imageURL
	return nil
}
