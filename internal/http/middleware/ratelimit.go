// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the edge limiter: an in-memory token bucket per
// client that caps raw request throughput on the public routes. It is
// separate from the submission rate limit of the protection pipeline, which
// counts logged submissions per address over a long window; this one only
// absorbs bursts before any work is done.
//
// The limiter is process-local. Buckets idle for longer than the TTL are
// evicted opportunistically during lookups.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-form-gatekeeper/internal/ipresolve"
)

const (
	// visitorTTL is how long an untouched bucket survives.
	visitorTTL = 10 * time.Minute
	// gcEveryCalls is the number of lookups between eviction sweeps.
	gcEveryCalls = 5000
)

// keyFunc selects the identity used to key a rate-limit bucket.
//
// Keys are namespaced ("admin:<name>", "ip:<addr>") so an administrator and
// a client address can never share a bucket.
type keyFunc func(*gin.Context) string

// KeyByAdminOrIP returns a keyFunc for the gatekeeper's routes.
//
// Behavior:
//   - Behind AdminAuth the key is the authenticated administrator, so an
//     admin working from a shared office address is not throttled together
//     with anonymous traffic from it.
//   - Otherwise the key is the client address rv resolves from the proxy
//     headers, the same address the submission pipeline logs and counts.
//   - When rv cannot resolve an address, Gin's ClientIP is used.
func KeyByAdminOrIP(rv ipresolve.Resolver) keyFunc {
	return func(c *gin.Context) string {
		if u := AdminUser(c); u != "" {
			return "admin:" + u
		}
		if ip := rv.Resolve(c.Request); ip != "" {
			return "ip:" + ip
		}
		return "ip:" + c.ClientIP()
	}
}

// visitor holds one bucket and the last time it was used, for eviction.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter. Safe for concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    keyFunc
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	cleanupN uint64
	now      func() time.Time
}

// NewRateLimiter constructs a RateLimiter keyed by keyFn.
//
// Parameters:
//   - rps: tokens replenished per second (RATE_RPS). Zero admits only the
//     initial burst.
//   - burst: bucket capacity (RATE_BURST), coerced to at least 1.
//   - keyFn: identity of the caller, usually KeyByAdminOrIP.
//
// One RateLimiter may back several route groups; they then share buckets.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      visitorTTL,
		now:      time.Now,
	}
}

// getVisitor returns the limiter for key, creating it if absent. Every
// gcEveryCalls lookups idle buckets are evicted first, so a stale bucket is
// dropped even when it is the one being fetched.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupN++
	if rl.cleanupN >= gcEveryCalls {
		for k, vv := range rl.visitors {
			if now.Sub(vv.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Handler returns the middleware. Requests over the limit get 429 with a
// Retry-After hint and the standard error envelope:
//
//	{"request_id": "...", "code": "too_many_requests", "message": "rate limit exceeded"}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := rl.getVisitor(rl.keyFn(c))
		r := lim.ReserveN(rl.now(), 1)
		if !r.OK() {
			rl.reject(c, time.Second)
			return
		}
		if d := r.DelayFrom(rl.now()); d > 0 {
			r.CancelAt(rl.now())
			rl.reject(c, d)
			return
		}
		c.Next()
	}
}

// reject aborts with 429. Retry-After is wait rounded up to whole seconds,
// never less than one.
func (rl *RateLimiter) reject(c *gin.Context, wait time.Duration) {
	secs := int(wait.Seconds() + 0.999)
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "too_many_requests",
		"message":    "rate limit exceeded",
	})
}
