package mw

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"bookmarkd/internal/auth"
	"bookmarkd/internal/utils"
)

// RateLimitConfig tunes the per-caller token bucket.
type RateLimitConfig struct {
	Burst      int  // bucket capacity
	PerMin     int  // refill per caller per minute
	TrustProxy bool // resolve IP from proxy headers when true
}

type bucket struct {
	tokens   float64
	lastRef  time.Time
	lastSeen time.Time
}

type limiter struct {
	cfg      RateLimitConfig
	rate     float64 // tokens per second
	capacity float64
	mu       sync.Mutex
	buckets  map[string]*bucket
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 30
	}
	if cfg.PerMin <= 0 {
		cfg.PerMin = 60
	}
	return &limiter{
		cfg:      cfg,
		rate:     float64(cfg.PerMin) / 60.0,
		capacity: float64(cfg.Burst),
		buckets:  make(map[string]*bucket),
	}
}

func (l *limiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRef: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRef).Seconds()
	b.tokens += elapsed * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRef = now
	b.lastSeen = now

	// Opportunistic sweep of idle callers.
	if len(l.buckets) > 4096 {
		for k, old := range l.buckets {
			if now.Sub(old.lastSeen) > 10*time.Minute {
				delete(l.buckets, k)
			}
		}
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimit throttles callers with a token bucket. Mounted behind the
// auth middleware it keys on the verified user id, so a user's tabs share
// one budget; without an identity in the context it falls back to the
// client IP.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limitStr := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := utils.ClientIP(r, l.cfg.TrustProxy)
			if id, ok := auth.IdentityFrom(r.Context()); ok {
				key = "user:" + id.UserID
			}

			if !l.allow(key, time.Now()) {
				w.Header().Set("X-RateLimit-Limit", limitStr)
				w.Header().Set("X-RateLimit-Remaining", "0")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
