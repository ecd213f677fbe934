package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/catalog-image-sync/internal/entity"
)

// CatalogFile stores the catalog as a pretty-printed JSON file.
// It implements repository.CatalogRepository.
type CatalogFile struct {
	path string
}

func NewCatalogFile(path string) *CatalogFile {
	return &CatalogFile{path: path}
}

func (f *CatalogFile) Location() string {
	return f.path
}

// Load reads and decodes the catalog file.
func (f *CatalogFile) Load(ctx context.Context) (*entity.Catalog, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", f.path, err)
	}

	var catalog entity.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", f.path, err)
	}
	return &catalog, nil
}

// Save writes the catalog with a two-space indent. The document is written to a
// temporary file in the same directory and renamed over the original, so an
// interrupted write leaves the previous catalog intact.
func (f *CatalogFile) Save(ctx context.Context, catalog *entity.Catalog) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(f.path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp catalog: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err = enc.Encode(catalog); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		return err
	}
	if err = os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace catalog %s: %w", f.path, err)
	}
	return nil
}
