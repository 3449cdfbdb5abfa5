package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PathCache stores each entry verbatim in the file named by its key.
//
// It backs the classic "dump file" workflow: a snapshot lives at a
// user-chosen path such as ./data/re3data_repo_dump and is reused for as
// long as the file exists. There is no expiry and no staleness check;
// deleting the file is the only way to force a new harvest.
type PathCache struct{}

// NewPathCache creates a path-addressed cache.
func NewPathCache() *PathCache {
	return &PathCache{}
}

// Get reads the file at key.
func (c *PathCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrInvalidKey
	}
	data, err := os.ReadFile(key)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set writes data to the file at key, creating parent directories.
// The ttl is ignored.
func (c *PathCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	return writeFileAtomic(key, data)
}

// Delete removes the file at key.
func (c *PathCache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	err := os.Remove(key)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for path cache.
func (c *PathCache) Close() error {
	return nil
}

// writeFileAtomic writes data next to path and renames it into place so a
// crashed write never leaves a truncated snapshot behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Ensure PathCache implements Cache.
var _ Cache = (*PathCache)(nil)
