package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SiteCacheKey is the fixed name of the cached site document.
const SiteCacheKey = "site_config_cache"

// SiteCache persists the last fully fetched site document. It is advisory:
// read once at startup, written only after a successful bulk reload, and
// never sent back to the server.
type SiteCache interface {
	// Load returns nil, nil when nothing is cached.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, raw []byte) error
}

// FileCache keeps the document in <dir>/site_config_cache.json.
type FileCache struct {
	path string
}

func NewFileCache(dir string) *FileCache {
	return &FileCache{path: filepath.Join(dir, SiteCacheKey+".json")}
}

func (c *FileCache) Load(_ context.Context) ([]byte, error) {
	raw, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read site cache: %w", err)
	}
	return raw, nil
}

// Save writes through a temp file so a crash never leaves half a document.
func (c *FileCache) Save(_ context.Context, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write site cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace site cache: %w", err)
	}
	return nil
}
