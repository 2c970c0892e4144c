package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ghosthack3r/wintune/internal/shared/types"
)

// RateLimiter is a per-client token bucket. Buckets refill fully once the
// interval has elapsed since their last reset.
type RateLimiter struct {
	requests map[string]*bucket
	mu       sync.Mutex
	rate     int
	interval time.Duration
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a limiter allowing rate requests per interval
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
	}
}

// Allow reports whether a request from key fits the budget
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	b, exists := r.requests[key]
	if !exists {
		r.requests[key] = &bucket{
			tokens:    r.rate - 1,
			lastReset: now,
		}
		return true
	}

	if now.Sub(b.lastReset) >= r.interval {
		b.tokens = r.rate - 1
		b.lastReset = now
		return true
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// RateLimit creates a rate limiting middleware keyed by client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.JSON(429, gin.H{
				"success": false,
				"error": gin.H{
					"code":    types.ErrCodeRateLimited,
					"message": "too many requests",
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestSizeLimit caps the request body size
func RequestSizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
