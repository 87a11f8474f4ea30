package expr

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultHotCacheSize and DefaultMainCacheSize size the Cache's two tiers
// (§4.5): a small hot tier for the handful of expressions evaluated on
// every record, backed by a larger main tier for everything else.
const (
	DefaultHotCacheSize  = 100
	DefaultMainCacheSize = 1000
	DefaultCacheTTL      = 10 * time.Minute
)

type cacheEntry struct {
	compiled *CompiledExpression
	expires  time.Time
}

// CacheStats tracks per-tier hit/miss counts for observability.
type CacheStats struct {
	HotHits    uint64
	HotMisses  uint64
	MainHits   uint64
	MainMisses uint64
}

// Cache is a two-tier LRU for CompiledExpressions, keyed by expression
// source plus an optional schema id (expressions in conditional rules can
// reference schema-scoped variables, so the same source string compiled
// against two schemas is not interchangeable).
type Cache struct {
	mu  sync.Mutex
	hot *lru.Cache[string, cacheEntry]

	mainMu sync.Mutex
	main   *lru.Cache[string, cacheEntry]

	ttl   time.Duration
	stats CacheStats
}

// NewCache builds a Cache with the spec's default tier sizes and TTL.
func NewCache() *Cache {
	return NewCacheWithSizes(DefaultHotCacheSize, DefaultMainCacheSize, DefaultCacheTTL)
}

// NewCacheWithSizes builds a Cache with explicit tier sizes and TTL.
func NewCacheWithSizes(hotSize, mainSize int, ttl time.Duration) *Cache {
	hot, _ := lru.New[string, cacheEntry](hotSize)
	main, _ := lru.New[string, cacheEntry](mainSize)
	return &Cache{hot: hot, main: main, ttl: ttl}
}

// cacheKey derives the cache key from source and an optional schema id.
func cacheKey(source, schemaID string) string {
	h := sha256.Sum256([]byte(schemaID + "\x00" + source))
	return hex.EncodeToString(h[:])
}

// Get looks up a compiled expression, checking the hot tier first and
// promoting a main-tier hit into the hot tier (read-through promotion).
// A found-but-expired entry is treated as a miss and evicted.
func (c *Cache) Get(source, schemaID string) (*CompiledExpression, bool) {
	key := cacheKey(source, schemaID)
	now := time.Now()

	c.mu.Lock()
	if entry, ok := c.hot.Get(key); ok {
		if entry.expires.After(now) {
			c.stats.HotHits++
			c.mu.Unlock()
			return entry.compiled, true
		}
		c.hot.Remove(key)
	}
	c.stats.HotMisses++
	c.mu.Unlock()

	c.mainMu.Lock()
	entry, ok := c.main.Get(key)
	if ok && entry.expires.After(now) {
		c.stats.MainHits++
		c.mainMu.Unlock()
		c.promote(key, entry)
		return entry.compiled, true
	}
	if ok {
		c.main.Remove(key)
	}
	c.stats.MainMisses++
	c.mainMu.Unlock()
	return nil, false
}

func (c *Cache) promote(key string, entry cacheEntry) {
	c.mu.Lock()
	c.hot.Add(key, entry)
	c.mu.Unlock()
}

// Put inserts a compiled expression into the main tier. Hot-tier membership
// is earned through repeated lookups (via Get's promotion), not granted on
// insert.
func (c *Cache) Put(source, schemaID string, compiled *CompiledExpression) {
	key := cacheKey(source, schemaID)
	entry := cacheEntry{compiled: compiled, expires: time.Now().Add(c.ttl)}
	c.mainMu.Lock()
	c.main.Add(key, entry)
	c.mainMu.Unlock()
}

// Prune evicts expired entries from both tiers. Callers on a ticking
// goroutine use this to bound memory held by long-idle expressions; Get
// already self-heals on a per-key basis so Prune is not required for
// correctness.
func (c *Cache) Prune() {
	now := time.Now()
	c.mu.Lock()
	for _, key := range c.hot.Keys() {
		if entry, ok := c.hot.Peek(key); ok && !entry.expires.After(now) {
			c.hot.Remove(key)
		}
	}
	c.mu.Unlock()

	c.mainMu.Lock()
	for _, key := range c.main.Keys() {
		if entry, ok := c.main.Peek(key); ok && !entry.expires.After(now) {
			c.main.Remove(key)
		}
	}
	c.mainMu.Unlock()
}

// Stats returns a snapshot of per-tier hit/miss counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	c.mainMu.Lock()
	defer c.mainMu.Unlock()
	defer c.mu.Unlock()
	return c.stats
}

// Len reports the current hot and main tier occupancy.
func (c *Cache) Len() (hot, main int) {
	c.mu.Lock()
	hot = c.hot.Len()
	c.mu.Unlock()
	c.mainMu.Lock()
	main = c.main.Len()
	c.mainMu.Unlock()
	return hot, main
}
