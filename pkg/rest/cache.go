package rest

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fivetwenty-io/restverb/internal/constants"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"
)

// CacheEntry is a cached response. Identity is the digest of the credentials
// the response was fetched with; an entry is only served to the same identity.
type CacheEntry struct {
	StatusCode int         `json:"status_code"`
	Data       []byte      `json:"data"`
	Headers    http.Header `json:"headers,omitempty"`
	Identity   string      `json:"identity"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Cache stores responses by key.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// CacheKey derives a backend-safe key from a URL.
func CacheKey(rawURL string) string {
	return digest(rawURL)
}

// CacheIdentity derives the identity stored with an entry from the
// Authorization header value. Unauthenticated requests share one identity.
func CacheIdentity(authorization string) string {
	return digest("identity:" + authorization)
}

func digest(value string) string {
	sum := sha256.Sum256([]byte(value))

	return hex.EncodeToString(sum[:])
}

// CacheConfig configures cache backend.
type CacheConfig struct {
	// Type is the cache backend type
	Type CacheType

	// MaxSize is the maximum number of items in a memory cache
	MaxSize int

	// TTL is the bucket-level maximum age of NATS entries when NATS.TTL is unset
	TTL time.Duration

	// NATS KV cache configuration
	NATS *NATSConfig
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:    CacheTypeMemory,
		MaxSize: constants.DefaultCacheSize,
		TTL:     constants.DefaultCacheTTL,
	}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(ctx context.Context, config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory:
		return NewMemoryCache(config.MaxSize), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, configError("cache", ErrNATSConfigMissing)
		}

		natsConfig := *config.NATS
		if natsConfig.TTL == 0 {
			natsConfig.TTL = config.TTL
		}

		return NewNATSCache(ctx, &natsConfig)

	case CacheTypeNone, "":
		return NewNoOpCache(), nil

	default:
		return nil, configError("cache", fmt.Errorf("%w: %s", ErrUnsupportedCache, config.Type))
	}
}

// MemoryCache is a bounded in-process cache that evicts the least recently used entry.
type MemoryCache struct {
	mutex   sync.Mutex
	maxSize int
	order   *list.List
	items   map[string]*list.Element
}

type memoryItem struct {
	key   string
	entry *CacheEntry
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		maxSize: maxSize,
		order:   list.New(),
		items:   make(map[string]*list.Element),
	}
}

// Get returns a fresh entry or ErrCacheMiss.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	element, ok := c.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	item, _ := element.Value.(*memoryItem)
	if item.entry.Expired() {
		c.removeElement(element)

		return nil, ErrCacheMiss
	}

	c.order.MoveToFront(element)

	return item.entry, nil
}

// Set stores entry under key.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if element, ok := c.items[key]; ok {
		element.Value = &memoryItem{key: key, entry: entry}
		c.order.MoveToFront(element)

		return nil
	}

	c.items[key] = c.order.PushFront(&memoryItem{key: key, entry: entry})

	for c.order.Len() > c.maxSize {
		c.removeElement(c.order.Back())
	}

	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if element, ok := c.items[key]; ok {
		c.removeElement(element)
	}

	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element)

	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *MemoryCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.order.Len()
}

func (c *MemoryCache) removeElement(element *list.Element) {
	item, _ := element.Value.(*memoryItem)
	delete(c.items, item.key)
	c.order.Remove(element)
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always misses.
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheMiss
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}
