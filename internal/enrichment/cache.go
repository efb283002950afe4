package enrichment

import (
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gomodule/redigo/redis"
)

// DefaultCacheTTL is how long provider details stay fresh. Provider data
// changes rarely, so a day keeps API volume low without going stale.
const DefaultCacheTTL = 24 * time.Hour

// Cache stores provider details per hotel code. Negative entries remember
// that a code had no details, so repeated lookups do not hammer the API.
type Cache interface {
	// Get returns the cached details and whether the entry exists. A
	// cached miss returns (nil, true): the lookup is answered, the
	// answer is "nothing there".
	Get(code string) (*Details, bool)

	// Put stores details for a code.
	Put(code string, d Details)

	// PutNegative remembers that a code has no provider details.
	PutNegative(code string)
}

type memoryEntry struct {
	details   *Details // nil for negative entries
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache for provider details.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates a cache with the given TTL (DefaultCacheTTL when
// non-positive).
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(code string) (*Details, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[code]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, code)
		return nil, false
	}
	return e.details, true
}

func (c *MemoryCache) Put(code string, d Details) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = memoryEntry{details: &d, expiresAt: c.now().Add(c.ttl)}
}

func (c *MemoryCache) PutNegative(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = memoryEntry{details: nil, expiresAt: c.now().Add(c.ttl)}
}

// redisNegative marks a cached "no details" answer.
const redisNegative = "-"

// RedisCache stores provider details in Redis so multiple instances share
// one enrichment cache. Errors degrade to cache misses; Redis being down
// must never block scoring.
type RedisCache struct {
	pool *redis.Pool
	ttl  time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache creates a Redis-backed cache against the given address.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	pool := &redis.Pool{
		MaxIdle:     4,
		IdleTimeout: 5 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr,
				redis.DialConnectTimeout(3*time.Second),
				redis.DialReadTimeout(2*time.Second),
				redis.DialWriteTimeout(2*time.Second))
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
	return &RedisCache{pool: pool, ttl: ttl}
}

func cacheKey(code string) string {
	return fmt.Sprintf("venuerank:enrich:%s", code)
}

func (c *RedisCache) Get(code string) (*Details, bool) {
	conn := c.pool.Get()
	defer conn.Close()

	raw, err := redis.String(conn.Do("GET", cacheKey(code)))
	if err != nil {
		return nil, false
	}
	if raw == redisNegative {
		return nil, true
	}

	var d Details
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, false
	}
	return &d, true
}

func (c *RedisCache) Put(code string, d Details) {
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	conn := c.pool.Get()
	defer conn.Close()
	_, _ = conn.Do("SET", cacheKey(code), string(raw), "EX", int(c.ttl.Seconds()))
}

func (c *RedisCache) PutNegative(code string) {
	conn := c.pool.Get()
	defer conn.Close()
	_, _ = conn.Do("SET", cacheKey(code), redisNegative, "EX", int(c.ttl.Seconds()))
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.pool.Close()
}
