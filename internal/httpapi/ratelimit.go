package httpapi

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

type RateLimitConfig struct {
	IPPerMinute  int
	IPBurst      int
	AppPerMinute int
	AppBurst     int
	// TrustedProxies lists peers allowed to report the client through
	// X-Forwarded-For.
	TrustedProxies []string
}

// RateLimiter applies one token bucket per client address and one per
// calling application.
type RateLimiter struct {
	ipLimiter  *tokenLimiter
	appLimiter *tokenLimiter
	proxies    proxySet
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		ipLimiter:  newTokenLimiter(cfg.IPPerMinute, cfg.IPBurst),
		appLimiter: newTokenLimiter(cfg.AppPerMinute, cfg.AppBurst),
		proxies:    newProxySet(cfg.TrustedProxies),
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		ip := l.proxies.clientIP(r)
		if ip != "" && !l.ipLimiter.allow(ip) {
			writeError(w, http.StatusTooManyRequests, typeRateLimited, "Too many requests")
			return
		}
		application := strings.TrimSpace(r.Header.Get("application"))
		if application != "" && !l.appLimiter.allow(application) {
			writeError(w, http.StatusTooManyRequests, typeRateLimited, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type tokenLimiter struct {
	mu     sync.Mutex
	rate   float64
	burst  float64
	bucket map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func newTokenLimiter(perMinute, burst int) *tokenLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = 20
	}
	return &tokenLimiter{
		rate:   float64(perMinute) / 60.0,
		burst:  float64(burst),
		bucket: make(map[string]*bucket),
	}
}

func (l *tokenLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.bucket[key]
	if !ok {
		l.bucket[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}
	elapsed := now.Sub(b.last).Seconds()
	b.tokens = min(l.burst, b.tokens+elapsed*l.rate)
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
