// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the inbound rate limiter of the API: an in-memory
// token bucket per client IP with opportunistic eviction of idle buckets.
// It protects the upstream enrichment budget from clients hammering the
// search endpoint; it is process-local and not an authorization mechanism.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc selects the identity used to key a rate-limit bucket.
type keyFunc func(*gin.Context) string

// KeyByIP keys buckets by the client IP as resolved by Gin (honoring the
// engine's trusted proxy settings).
func KeyByIP() keyFunc {
	return func(c *gin.Context) string { return "ip:" + c.ClientIP() }
}

// visitor holds a single rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements a per-key token-bucket rate limiter. It is safe for
// concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    keyFunc
	exempt   map[string]struct{}
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	gcEvery  uint64
	lookups  uint64
	nowFn    func() time.Time
}

// NewRateLimiter constructs a limiter refilling rps tokens per second with the
// given burst (coerced to at least 1). Requests whose matched route is listed
// in exemptRoutes are never limited.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc, exemptRoutes ...string) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByIP()
	}
	ex := make(map[string]struct{}, len(exemptRoutes))
	for _, p := range exemptRoutes {
		ex[p] = struct{}{}
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		exempt:   ex,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
		gcEvery:  5000,
		nowFn:    time.Now,
	}
}

// getVisitor returns the limiter for key, creating it if absent. Idle buckets
// are swept every gcEvery lookups, before the requested one is refreshed.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := rl.nowFn()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= rl.gcEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// size reports the number of live buckets.
func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// maxRetryAfter caps the advertised wait. A zero-rate bucket reports
// rate.InfDuration, which must not leak into the header.
const maxRetryAfter = 60 * time.Second

// retryAfterSeconds rounds a wait up to whole seconds, clamped to
// [1, maxRetryAfter].
func retryAfterSeconds(d time.Duration) int {
	if d >= maxRetryAfter {
		return int(maxRetryAfter / time.Second)
	}
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// Handler returns a Gin middleware that enforces the per-key limits.
//
// A rejected request receives 429 with a Retry-After header derived from the
// bucket's refill time and the standard error envelope:
//
//	{ "request_id": "...", "code": "too_many_requests", "message": "rate limit exceeded" }
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := rl.exempt[c.FullPath()]; ok {
			c.Next()
			return
		}

		lim := rl.getVisitor(rl.keyFn(c))
		now := rl.nowFn()
		res := lim.ReserveN(now, 1)
		delay := maxRetryAfter
		if res.OK() {
			delay = res.DelayFrom(now)
			if delay == 0 {
				c.Next()
				return
			}
			// Give the token back; the caller is told when to retry instead.
			res.CancelAt(now)
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(delay)))

		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}
