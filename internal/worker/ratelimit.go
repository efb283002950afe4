package worker

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter.
type RateLimiter struct {
	lastUpdate time.Time
	rate       float64
	burst      int
	tokens     float64
	requests   int64
	rejected   int64
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter allowing rate requests per
// second with the given burst.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	return &RateLimiter{
		rate:       rate,
		burst:      burst,
		tokens:     float64(burst),
		lastUpdate: time.Now(),
	}
}

// Allow checks if a request should be allowed.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.requests++

	now := time.Now()
	elapsed := now.Sub(rl.lastUpdate).Seconds()
	rl.tokens += elapsed * rl.rate
	if rl.tokens > float64(rl.burst) {
		rl.tokens = float64(rl.burst)
	}
	rl.lastUpdate = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}

	rl.rejected++
	return false
}

// PerClientRateLimiter applies a token bucket per client key. Idle
// buckets are dropped during lookups so the map stays bounded.
type PerClientRateLimiter struct {
	lastCleanup     time.Time
	clients         map[string]*RateLimiter
	rate            float64
	burst           int
	cleanupInterval time.Duration
	maxIdleTime     time.Duration
	mu              sync.Mutex
}

// NewPerClientRateLimiter creates a new per-client rate limiter.
func NewPerClientRateLimiter(rate float64, burst int) *PerClientRateLimiter {
	return &PerClientRateLimiter{
		rate:            rate,
		burst:           burst,
		clients:         make(map[string]*RateLimiter),
		cleanupInterval: 5 * time.Minute,
		maxIdleTime:     10 * time.Minute,
		lastCleanup:     time.Now(),
	}
}

// Allow checks if a request from the given client should be allowed.
func (pcrl *PerClientRateLimiter) Allow(clientKey string) bool {
	return pcrl.getLimiter(clientKey).Allow()
}

func (pcrl *PerClientRateLimiter) getLimiter(key string) *RateLimiter {
	pcrl.mu.Lock()
	defer pcrl.mu.Unlock()

	if time.Since(pcrl.lastCleanup) > pcrl.cleanupInterval {
		pcrl.cleanupLocked()
	}

	limiter, exists := pcrl.clients[key]
	if !exists {
		limiter = NewRateLimiter(pcrl.rate, pcrl.burst)
		pcrl.clients[key] = limiter
	}
	return limiter
}

// cleanupLocked removes idle limiters. Caller must hold pcrl.mu. The
// nested limiter.mu section only reads lastUpdate, so the lock order
// pcrl.mu -> limiter.mu is safe.
func (pcrl *PerClientRateLimiter) cleanupLocked() {
	now := time.Now()
	for key, limiter := range pcrl.clients {
		limiter.mu.Lock()
		idle := now.Sub(limiter.lastUpdate)
		limiter.mu.Unlock()
		if idle > pcrl.maxIdleTime {
			delete(pcrl.clients, key)
		}
	}
	pcrl.lastCleanup = now
}

// Stats returns aggregate statistics.
func (pcrl *PerClientRateLimiter) Stats() map[string]any {
	pcrl.mu.Lock()
	rate := pcrl.rate
	burst := pcrl.burst
	active := len(pcrl.clients)
	limiters := make([]*RateLimiter, 0, active)
	for _, limiter := range pcrl.clients {
		limiters = append(limiters, limiter)
	}
	pcrl.mu.Unlock()

	var totalRequests, totalRejected int64
	for _, limiter := range limiters {
		limiter.mu.Lock()
		totalRequests += limiter.requests
		totalRejected += limiter.rejected
		limiter.mu.Unlock()
	}

	return map[string]any{
		"rate":           rate,
		"burst":          burst,
		"active_clients": active,
		"total_requests": totalRequests,
		"total_rejected": totalRejected,
	}
}

// RateLimitMiddleware applies per-client rate limiting keyed by the
// client IP resolved by the RealIP middleware.
func RateLimitMiddleware(limiter *PerClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.RemoteAddr
			if ip := r.Header.Get("X-Real-IP"); ip != "" {
				clientKey = ip
			}

			if !limiter.Allow(clientKey) {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
