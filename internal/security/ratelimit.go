package security

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter caps catalog writes per client IP within a fixed window.
type RateLimiter struct {
	mu              sync.Mutex
	clients         map[string]*windowRecord
	maxWrites       int
	windowDuration  time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

type windowRecord struct {
	count       int
	windowStart time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxWrites       int           // Writes allowed per window (default: 60)
	WindowDuration  time.Duration // Window length (default: 1m)
	CleanupInterval time.Duration // How often to drop expired records (default: 5m)
}

// DefaultRateLimitConfig returns sensible defaults for rate limiting.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxWrites:       60,
		WindowDuration:  time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop.
// Call Stop to release it.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := DefaultRateLimitConfig()
	if cfg.MaxWrites <= 0 {
		cfg.MaxWrites = defaults.MaxWrites
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = defaults.WindowDuration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}

	rl := &RateLimiter{
		clients:         make(map[string]*windowRecord),
		maxWrites:       cfg.MaxWrites,
		windowDuration:  cfg.WindowDuration,
		cleanupInterval: cfg.CleanupInterval,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// Take counts one write for key. It returns false and the time until the
// window resets once the limit is reached.
func (rl *RateLimiter) Take(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, exists := rl.clients[key]
	if !exists || now.Sub(record.windowStart) >= rl.windowDuration {
		rl.clients[key] = &windowRecord{count: 1, windowStart: now}
		return true, 0
	}

	if record.count >= rl.maxWrites {
		return false, record.windowStart.Add(rl.windowDuration).Sub(now)
	}

	record.count++
	return true, 0
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup removes records whose window has ended.
func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, record := range rl.clients {
		if now.Sub(record.windowStart) >= rl.windowDuration {
			delete(rl.clients, key)
		}
	}
}

// Middleware limits write requests per client IP. Reads and search pass
// through uncounted.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isWrite(c.Request) {
			c.Next()
			return
		}

		allowed, retryAfter := rl.Take(c.ClientIP())
		if allowed {
			c.Next()
			return
		}

		seconds := int(math.Ceil(retryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(seconds))
		if strings.Contains(c.GetHeader("Accept"), "application/json") {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many changes, slow down",
				"retry_after": seconds,
			})
			return
		}
		c.String(http.StatusTooManyRequests, "Too many changes, try again in %d seconds", seconds)
		c.Abort()
	}
}

func isWrite(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return strings.TrimSuffix(r.URL.Path, "/") != "/books/search"
}
