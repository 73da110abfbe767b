package middlewares

import (
	"net"
	"net/http"
	"sync"

	"techrobotics-site/internal/metrics"

	"golang.org/x/time/rate"
)

const maxTrackedClients = 10000

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds drops every limiter once more than maxSize clients are tracked.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// RateLimiter limits requests per client IP for one endpoint.
type RateLimiter struct {
	endpoint string
	cache    *limiterCache[string]
}

func NewRateLimiter(endpoint string, rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		endpoint: endpoint,
		cache:    newLimiterCache[string](rps, burst),
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.cache.clearIfExceeds(maxTrackedClients)
	return rl.cache.get(ip).Allow()
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !rl.Allow(ip) {
			metrics.RateLimited.WithLabelValues(rl.endpoint).Inc()
			if logger := GetLogger(r); logger != nil {
				logger.Warn("rate limit exceeded", "endpoint", rl.endpoint, "ip", ip)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests. Please wait a moment and try again."}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the host part of RemoteAddr, as set by ClientIPMiddleware.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
