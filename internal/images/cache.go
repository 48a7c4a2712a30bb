// Package images caches generated location images on disk. Disk
// existence is the cache: a file at the canonical path is served
// without touching the generation API.
package images

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kotobamud/engine/internal/services"
)

// Cache stores one JPEG per content key under a single directory.
// Lookups never fail: a generation failure yields a placeholder path.
type Cache struct {
	dir    string
	svc    services.ImageService
	logger *slog.Logger

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	failed map[string]string // key -> placeholder path, avoids re-hitting the API this process
}

// NewCache creates the cache directory if needed. svc may be nil when
// image generation is disabled; every lookup then yields a placeholder.
func NewCache(dir string, svc services.ImageService, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		dir:    dir,
		svc:    svc,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
		failed: make(map[string]string),
	}, nil
}

// Dir is the directory images are persisted under, for static serving.
func (c *Cache) Dir() string {
	return c.dir
}

// Path is the canonical image path for a content key.
func (c *Cache) Path(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key)+".jpg")
}

// GetOrGenerate returns a usable image path for the key: the cached
// file if present, a freshly generated one otherwise, or a placeholder
// styled after the setting when generation fails. Concurrent callers
// for the same key produce at most one API call.
func (c *Cache) GetOrGenerate(ctx context.Context, key, prompt, setting string) string {
	path := c.Path(key)
	if fileExists(path) {
		return path
	}

	c.mu.Lock()
	if placeholder, ok := c.failed[key]; ok {
		c.mu.Unlock()
		return placeholder
	}
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	// The lock winner may have finished while we waited.
	if fileExists(path) {
		return path
	}
	c.mu.Lock()
	if placeholder, ok := c.failed[key]; ok {
		c.mu.Unlock()
		return placeholder
	}
	c.mu.Unlock()

	placeholder := c.generate(ctx, key, path, prompt, setting)
	if placeholder != "" {
		c.mu.Lock()
		c.failed[key] = placeholder
		c.mu.Unlock()
		return placeholder
	}
	return path
}

// generate runs one API call and persists the bytes. Returns a
// placeholder path on failure, empty string on success.
func (c *Cache) generate(ctx context.Context, key, path, prompt, setting string) string {
	if c.svc == nil {
		return c.placeholder(setting)
	}

	data, err := c.svc.GenerateImage(ctx, prompt, services.DefaultResolution)
	if err != nil {
		c.logger.Warn("image generation failed, using placeholder", "key", key, "setting", setting, "error", err)
		return c.placeholder(setting)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.logger.Warn("failed to persist image", "key", key, "error", err)
		return c.placeholder(setting)
	}
	c.logger.Debug("image cached", "key", key, "bytes", len(data))
	return ""
}

// placeholder returns the fallback image path for a setting, rendering
// the tinted file on first use. One placeholder file per setting.
func (c *Cache) placeholder(setting string) string {
	name := "placeholder.jpg"
	if setting != "" {
		name = "placeholder_" + sanitizeKey(setting) + ".jpg"
	}
	path := filepath.Join(c.dir, name)
	if fileExists(path) {
		return path
	}
	if err := writePlaceholder(path, setting); err != nil {
		c.logger.Warn("failed to render placeholder", "setting", setting, "error", err)
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// sanitizeKey maps a content key to a safe filename component.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\', ' ':
			return '_'
		}
		return r
	}, key)
}
