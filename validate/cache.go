package validate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ValidatorCacheKey identifies one CompiledValidator plan for a given
// schema identity, version, class, and option set (§4.7).
type ValidatorCacheKey string

// NewValidatorCacheKey hashes the (schemaID, schemaVersion, className,
// options) tuple into a stable ValidatorCacheKey.
func NewValidatorCacheKey(schemaID, schemaVersion, className, options string) ValidatorCacheKey {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%s", schemaID, schemaVersion, className, options)
	return ValidatorCacheKey(hex.EncodeToString(h.Sum(nil)))
}

// L2Store is the external key/value service backing the cache's L2 tier:
// opaque bytes in, opaque bytes out, with a TTL the store itself enforces.
// Implementations are expected to be network-backed and are always called
// with a context.
type L2Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// entry is what L1 stores: the compiled plan plus its serialized blob, so
// an L1 entry can be written straight through to L2/L3 without
// re-marshaling on every write.
type entry struct {
	compiled *CompiledValidator
	blob     []byte
}

// Cache is the multi-layer validator cache of §4.7: L1 in-process LRU with
// a TTL, an optional L2 external store, and an optional L3 on-disk store
// bounded by total size with mtime-LRU eviction.
type Cache struct {
	l1    *lru.Cache[ValidatorCacheKey, entry]
	l1TTL time.Duration
	// expiresAt tracks L1 entries' TTL deadlines; golang-lru's Cache has no
	// native per-entry TTL, so the Cache wraps it with its own expiry map
	// guarded by the same mutex as l1 access.
	expiresAt map[ValidatorCacheKey]time.Time
	mu        sync.Mutex

	l2    L2Store
	l2TTL time.Duration

	l3Dir      string
	l3MaxBytes int64
	l3Enabled  bool

	now func() time.Time
}

// CacheOptions configures a Cache's tiers. Only L1 is mandatory: L2 and L3
// are both optional and independently enabled by a non-nil Store / non-empty
// Dir.
type CacheOptions struct {
	L1Size int
	L1TTL  time.Duration

	L2    L2Store
	L2TTL time.Duration

	L3Dir      string
	L3MaxBytes int64

	Now func() time.Time
}

// NewCache constructs a Cache. An L1Size of 0 defaults to 1000 entries and
// an L1TTL of 0 defaults to 5 minutes, per §4.7.
func NewCache(opts CacheOptions) (*Cache, error) {
	size := opts.L1Size
	if size <= 0 {
		size = 1000
	}
	l1, err := lru.New[ValidatorCacheKey, entry](size)
	if err != nil {
		return nil, fmt.Errorf("validate: building L1 cache: %w", err)
	}
	ttl := opts.L1TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	l2TTL := opts.L2TTL
	if l2TTL <= 0 {
		l2TTL = time.Hour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		l1:         l1,
		l1TTL:      ttl,
		expiresAt:  make(map[ValidatorCacheKey]time.Time),
		l2:         opts.L2,
		l2TTL:      l2TTL,
		l3Dir:      opts.L3Dir,
		l3MaxBytes: opts.L3MaxBytes,
		l3Enabled:  opts.L3Dir != "",
		now:        now,
	}, nil
}

// Get tries L1, then L2, then L3 in order, promoting to L1 on an L2 or L3
// hit and asynchronously warming L2 on an L3 hit (§4.7 "Reads").
func (c *Cache) Get(ctx context.Context, key ValidatorCacheKey) (*CompiledValidator, bool) {
	if cv, ok := c.getL1(key); ok {
		return cv, true
	}
	if c.l2 != nil {
		if blob, ok, err := c.l2.Get(ctx, string(key)); err == nil && ok {
			if cv, derr := UnmarshalCompiledValidator(blob); derr == nil {
				c.putL1(key, cv, blob)
				return cv, true
			}
		}
	}
	if c.l3Enabled {
		if blob, ok := c.getL3(key); ok {
			if cv, derr := UnmarshalCompiledValidator(blob); derr == nil {
				c.putL1(key, cv, blob)
				if c.l2 != nil {
					go func() { _ = c.l2.Set(context.Background(), string(key), blob, c.l2TTL) }()
				}
				return cv, true
			}
		}
	}
	return nil, false
}

// Put writes to L1 synchronously and fire-and-forgets L2/L3 writes (§4.7
// "Writes").
func (c *Cache) Put(key ValidatorCacheKey, cv *CompiledValidator) {
	blob, err := cv.Marshal()
	if err != nil {
		return
	}
	c.putL1(key, cv, blob)
	if c.l2 != nil {
		go func() { _ = c.l2.Set(context.Background(), string(key), blob, c.l2TTL) }()
	}
	if c.l3Enabled {
		go c.putL3(key, blob)
	}
}

// Invalidate removes key from every tier (§4.7 "Invalidation").
func (c *Cache) Invalidate(ctx context.Context, key ValidatorCacheKey) {
	c.mu.Lock()
	c.l1.Remove(key)
	delete(c.expiresAt, key)
	c.mu.Unlock()
	if c.l2 != nil {
		_ = c.l2.Delete(ctx, string(key))
	}
	if c.l3Enabled {
		_ = os.Remove(c.l3Path(key))
	}
}

func (c *Cache) getL1(key ValidatorCacheKey) (*CompiledValidator, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.l1.Get(key)
	if !ok {
		return nil, false
	}
	if exp, ok := c.expiresAt[key]; ok && c.now().After(exp) {
		c.l1.Remove(key)
		delete(c.expiresAt, key)
		return nil, false
	}
	return e.compiled, true
}

func (c *Cache) putL1(key ValidatorCacheKey, cv *CompiledValidator, blob []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l1.Add(key, entry{compiled: cv, blob: blob})
	c.expiresAt[key] = c.now().Add(c.l1TTL)
}

func (c *Cache) l3Path(key ValidatorCacheKey) string {
	return filepath.Join(c.l3Dir, string(key)+".bin")
}

func (c *Cache) getL3(key ValidatorCacheKey) ([]byte, bool) {
	blob, err := os.ReadFile(c.l3Path(key))
	if err != nil {
		return nil, false
	}
	return blob, true
}

// putL3 writes blob to disk and then enforces l3MaxBytes by evicting the
// least-recently-modified files until the directory fits within budget.
func (c *Cache) putL3(key ValidatorCacheKey, blob []byte) {
	if err := os.MkdirAll(c.l3Dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(c.l3Path(key), blob, 0o644)
	if c.l3MaxBytes <= 0 {
		return
	}
	c.evictL3()
}

type l3File struct {
	path    string
	size    int64
	modTime time.Time
}

func (c *Cache) evictL3() {
	var files []l3File
	var total int64
	_ = filepath.WalkDir(c.l3Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, l3File{path: path, size: info.Size(), modTime: info.ModTime()})
		total += info.Size()
		return nil
	})
	if total <= c.l3MaxBytes {
		return
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	for _, f := range files {
		if total <= c.l3MaxBytes {
			break
		}
		if err := os.Remove(f.path); err == nil {
			total -= f.size
		}
	}
}
