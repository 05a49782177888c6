package texture

import (
	"image"
	"sync"

	"brush2mdl/internal/converr"
)

// Resolver resolves a texture name to a decoded image.
type Resolver interface {
	Resolve(texName string) (*image.NRGBA, error)
}

// Cache is a concurrency-safe texture cache. Failed loads are cached too
// so every unit sees the same error.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Resolve loads and caches a texture by name.
func (c *Cache) Resolve(texName string) (*image.NRGBA, error) {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil, converr.Newf(converr.MissingTexture, "not found in texture index").WithTexture(texName)
	}

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := LoadTexture(path)
	if err != nil {
		err = converr.Wrap(converr.IoFailure, err).WithTexture(texName)
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[path]; exists {
		return entry.img, entry.err
	}
	c.items[path] = &cacheEntry{img: img, err: err}
	return img, err
}

// TextureSize reports the source dimensions, for UV normalization.
func (c *Cache) TextureSize(texName string) (int, int, bool) {
	img, err := c.Resolve(texName)
	if err != nil || img == nil {
		return 0, 0, false
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), true
}
