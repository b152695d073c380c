package mcp

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/maypok86/otter"
)

// renderCache holds rendered markdown for inline sources, keyed by a digest
// of everything that affects the output.
type renderCache struct {
	cache otter.Cache[string, string]
}

func newRenderCache(size int, ttl time.Duration) (*renderCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	cache, err := otter.MustBuilder[string, string](size).
		CollectStats().
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create render cache: %w", err)
	}

	return &renderCache{cache: cache}, nil
}

func (c *renderCache) get(key string) (string, bool) {
	return c.cache.Get(key)
}

func (c *renderCache) set(key, markdown string) {
	c.cache.Set(key, markdown)
}

func (c *renderCache) hits() int64 {
	return c.cache.Stats().Hits()
}

func (c *renderCache) close() {
	c.cache.Close()
}

// cacheKey digests the parts with a separator that cannot appear in titles.
func cacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
