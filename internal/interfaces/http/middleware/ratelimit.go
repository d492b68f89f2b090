package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/treeofhope/backend/internal/interfaces/http/dto"
)

// RateLimiter counts requests per key in fixed windows held in memory
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*counter
	limit   int
	window  time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

type counter struct {
	start time.Time
	used  int
}

// NewRateLimiter allows limit requests per key in every window. Stale keys
// are evicted in the background until Stop is called.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*counter),
		limit:   limit,
		window:  window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(2 * rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-2 * rl.window)
	for key, w := range rl.windows {
		if w.start.Before(cutoff) {
			delete(rl.windows, key)
		}
	}
}

// Stop ends background eviction
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// current returns the live window for key, opening a new one when the old
// window has elapsed. Callers hold mu.
func (rl *RateLimiter) current(key string, now time.Time) *counter {
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.window {
		w = &counter{start: now}
		rl.windows[key] = w
	}
	return w
}

// take consumes one request for key. It returns whether the request is
// allowed, how many remain and when the window resets.
func (rl *RateLimiter) take(key string) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w := rl.current(key, now)
	reset := w.start.Add(rl.window)
	if w.used >= rl.limit {
		return false, 0, reset
	}
	w.used++
	return true, rl.limit - w.used, reset
}

// Allow consumes one request for key and reports whether it may proceed
func (rl *RateLimiter) Allow(key string) bool {
	ok, _, _ := rl.take(key)
	return ok
}

// Remaining returns the requests left for key in its current window
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || rl.now().Sub(w.start) >= rl.window {
		return rl.limit
	}
	return max(rl.limit-w.used, 0)
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, (*gin.Context).ClientIP)
}

// RateLimitByKey limits requests per key derived from the request
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	limit := strconv.Itoa(limiter.limit)
	return func(c *gin.Context) {
		ok, remaining, reset := limiter.take(keyFunc(c))
		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			wait := math.Ceil(reset.Sub(limiter.now()).Seconds())
			c.Header("Retry-After", strconv.Itoa(max(int(wait), 1)))
			abortWithError(c, dto.ErrCodeRateLimited, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
