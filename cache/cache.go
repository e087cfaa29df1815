package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"vitrine/content"
)

// Cache stores rendered responses as files under dir.
type Cache struct {
	dir    string
	maxAge time.Duration
	logger *zap.Logger
}

func New(dir string, maxAge time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{dir: dir, maxAge: maxAge, logger: logger}
}

// Path returns the cache file path for key.
func (c *Cache) Path(key string) string {
	hash := generateHash(key)
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.cache", sanitize(key), hash[:16]))
}

// generateHash generates an xxHash hash for the given string
func generateHash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

func sanitize(key string) string {
	key = strings.Trim(key, "/")
	out := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, key)
	if len(out) > 64 {
		out = out[:64]
	}
	return out
}

func (c *Cache) Write(key string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(c.Path(key), data, 0644)
}

// Read returns the cached value if it exists and is younger than maxAge.
// An expired entry is removed.
func (c *Cache) Read(key string) ([]byte, bool) {
	cachePath := c.Path(key)

	info, err := os.Stat(cachePath)
	if err != nil {
		return nil, false
	}

	if time.Since(info.ModTime()) > c.maxAge {
		if err := c.Clear(key); err != nil {
			c.logger.Warn("failed to remove expired cache entry", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}

	return data, true
}

func (c *Cache) Clear(key string) error {
	err := os.Remove(c.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ClearAll removes every cached file.
func (c *Cache) ClearAll() error {
	return os.RemoveAll(c.dir)
}

// ClearOld removes cache files older than maxAge.
func (c *Cache) ClearOld() error {
	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".cache") {
			return nil
		}
		if time.Since(info.ModTime()) > c.maxAge {
			os.Remove(path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// InvalidateOn clears the cache whenever the store commits a change that
// can alter rendered blog output.
func (c *Cache) InvalidateOn(store *content.Store) (unsubscribe func()) {
	return store.Subscribe(func(change content.Change) {
		if !affectsBlog(change.Op) {
			return
		}
		if err := c.ClearAll(); err != nil {
			c.logger.Warn("failed to clear cache", zap.String("op", string(change.Op)), zap.Error(err))
			return
		}
		c.logger.Debug("cache cleared", zap.String("op", string(change.Op)))
	})
}

func affectsBlog(op content.Op) bool {
	switch op {
	case content.OpAddBlogPost, content.OpUpdateBlogPost, content.OpDeleteBlogPost,
		content.OpUpdateSettings, content.OpImport, content.OpReset:
		return true
	}
	return false
}
