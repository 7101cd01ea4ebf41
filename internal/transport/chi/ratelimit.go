package chi

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 3 * time.Minute
	limiterIdleTTL         = 5 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a per-IP limiter allowing rps requests per second with the given burst.
// A burst below 1 is raised to 1.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(rps),
		burst:    max(1, burst),
	}
}

func (rl *RateLimiter) limiterFor(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters[ip]; ok {
		l.lastSeen = now
		return l.limiter
	}

	l := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[ip] = &clientLimiter{limiter: l, lastSeen: now}
	return l
}

// Run evicts idle clients until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.evict(now)
		}
	}
}

func (rl *RateLimiter) evict(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, l := range rl.limiters {
		if now.Sub(l.lastSeen) > limiterIdleTTL {
			delete(rl.limiters, ip)
		}
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.limiterFor(clientIP(r), time.Now()).Allow() {
				retryAfter := max(int(1.0/float64(rl.rate)), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP expects chi's RealIP middleware to have rewritten RemoteAddr when behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
