package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize caps the embedding cache when no size is configured.
const DefaultCacheSize = 1000

// Cache is a bounded content-hash cache of embeddings with FIFO eviction.
// It is purely an optimization: it may be empty at any point without
// affecting correctness.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]float32
	order   []string
	maxSize int
}

// NewCache creates a cache holding at most maxSize entries.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Cache{
		entries: make(map[string][]float32),
		maxSize: maxSize,
	}
}

// Get returns the cached vector for a key.
func (c *Cache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a vector, evicting the oldest entry when full.
func (c *Cache) Put(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = vector
		return
	}

	if len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = vector
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset drops all entries.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]float32)
	c.order = nil
}

// Service wraps a Provider with caching and request coalescing.
// Identical text always resolves to the same vector via the content-hash
// cache; concurrent requests for the same text share one provider call.
type Service struct {
	provider Provider
	cache    *Cache
	group    singleflight.Group
}

// NewService creates an embedding service around a provider. A nil cache
// gets a default-sized one.
func NewService(provider Provider, cache *Cache) *Service {
	if cache == nil {
		cache = NewCache(DefaultCacheSize)
	}
	return &Service{provider: provider, cache: cache}
}

// Dimensions returns the provider's embedding vector size.
func (s *Service) Dimensions() int { return s.provider.Dimensions() }

// Cache exposes the cache for stats and test resets.
func (s *Service) Cache() *Cache { return s.cache }

// Embed generates (or reuses) the embedding for a text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	key := contentHash(text)
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}
		vec, err := s.provider.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

// EmbedBatch embeds multiple texts, serving cached entries and sending
// only the misses to the provider.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, t := range texts {
		if v, ok := s.cache.Get(contentHash(t)); ok {
			results[i] = v
		} else {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, t)
		}
	}

	if len(missTexts) > 0 {
		vecs, err := s.provider.EmbedBatch(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		for j, idx := range missIdx {
			results[idx] = vecs[j]
			s.cache.Put(contentHash(missTexts[j]), vecs[j])
		}
	}

	return results, nil
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
