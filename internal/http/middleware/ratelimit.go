// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// A process-local token-bucket rate limiter with one bucket per identity.
// Buckets live in a go-cache with a sliding idle TTL, so callers that stop
// sending requests stop costing memory. Replays flagged by
// IdempotencyValidator are not limited.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// KeyFunc selects the bucket identity for a request.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys by X-User-ID when UserIdentity stored one, else by
// client IP. Prefixes keep the two namespaces apart.
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if uid := UserIDFrom(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

const defaultBucketIdle = 10 * time.Minute

// RateLimiter is safe for concurrent use.
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	keyFn   KeyFunc
	idle    time.Duration
	mu      sync.Mutex
	buckets *cache.Cache
}

// NewRateLimiter allows rps tokens per second with the given burst (coerced
// to at least 1). rps 0 rejects everything after the first burst.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByUserOrIP()
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		idle:    defaultBucketIdle,
		buckets: cache.New(defaultBucketIdle, defaultBucketIdle),
	}
}

// limiter returns key's bucket, creating it on first use. Each hit resets the
// bucket's idle expiry.
func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.buckets.Get(key); ok {
		lim := v.(*rate.Limiter)
		rl.buckets.Set(key, lim, rl.idle)
		return lim
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets.Set(key, lim, rl.idle)
	return lim
}

// Buckets reports the number of live buckets.
func (rl *RateLimiter) Buckets() int { return rl.buckets.ItemCount() }

// IsRateBypass reports whether IdempotencyValidator exempted this request.
func IsRateBypass(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyRateBypass)
	b, _ := v.(bool)
	return b
}

// Handler rejects over-limit requests with 429 too_many_requests and
// Retry-After: 1.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) || rl.limiter(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		rateLimited.Inc()
		c.Header("Retry-After", "1")
		abortJSON(c, http.StatusTooManyRequests, "too_many_requests", "rate limit exceeded")
	}
}
