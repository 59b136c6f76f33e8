package theme

import (
	"sync"
	"time"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// MemoryCache is an in-memory LRU theme cache
type MemoryCache struct {
	mu      sync.Mutex
	themes  map[string]*cachedTheme
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	// tick orders entries by last use
	tick      uint64
	hits      int64
	misses    int64
	evictions int64
}

// cachedTheme wraps a theme with cache metadata
type cachedTheme struct {
	theme     *entities.Theme
	expiresAt time.Time
	lastUsed  uint64
}

// NewMemoryCache creates a new in-memory theme cache. A maxSize of 0 means
// unbounded and a ttl of 0 means entries never expire.
func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		themes:  make(map[string]*cachedTheme),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves a cached theme
func (c *MemoryCache) Get(name string) (*entities.Theme, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, exists := c.themes[name]
	if !exists {
		c.misses++
		return nil, false
	}

	if !cached.expiresAt.IsZero() && c.now().After(cached.expiresAt) {
		delete(c.themes, name)
		c.misses++
		return nil, false
	}

	c.hits++
	c.tick++
	cached.lastUsed = c.tick
	return cached.theme, true
}

// Set stores a theme in the cache
func (c *MemoryCache) Set(name string, theme *entities.Theme) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.themes[name]; !exists && c.maxSize > 0 && len(c.themes) >= c.maxSize {
		c.evictLRU()
	}

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	c.tick++
	c.themes[name] = &cachedTheme{
		theme:     theme,
		expiresAt: expiresAt,
		lastUsed:  c.tick,
	}
}

// Remove removes a theme from the cache
func (c *MemoryCache) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.themes, name)
}

// Clear clears all cached themes
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.themes = make(map[string]*cachedTheme)
}

// evictLRU evicts the least recently used theme. Callers hold mu.
func (c *MemoryCache) evictLRU() {
	var (
		evictName string
		oldest    uint64
	)
	for name, cached := range c.themes {
		if evictName == "" || cached.lastUsed < oldest {
			oldest = cached.lastUsed
			evictName = name
		}
	}

	if evictName != "" {
		delete(c.themes, evictName)
		c.evictions++
	}
}

// Stats returns cache statistics
func (c *MemoryCache) Stats() entities.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := entities.CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.themes),
		MaxSize:   c.maxSize,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total) * 100
	}
	return stats
}

// Ensure MemoryCache implements ThemeCache
var _ ports.ThemeCache = (*MemoryCache)(nil)
