package middleware

import (
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per user. Idle buckets expire.
type RateLimiter struct {
	every    time.Duration
	burst    int
	limiters *cache.Cache
	log      *logrus.Logger
}

// NewRateLimiter allows one request per every, with bursts of burst
func NewRateLimiter(every time.Duration, burst int, log *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		every:    every,
		burst:    burst,
		limiters: cache.New(30*time.Minute, 10*time.Minute),
		log:      log,
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Get(key); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(rate.Every(l.every), l.burst)
	// Add fails if another request created it first; use that one.
	if err := l.limiters.Add(key, lim, cache.DefaultExpiration); err != nil {
		if v, ok := l.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Allow reports whether key may make another request now
func (l *RateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

// Middleware rejects requests over the per-user rate with 429.
// It must run after Auth; anonymous requests share one bucket per remote address.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := UserID(r.Context())
		if !ok {
			key = "addr:" + r.RemoteAddr
		}
		if !l.Allow(key) {
			l.log.WithFields(logrus.Fields{"key": key, "path": r.URL.Path}).Warn("Rate limit exceeded")
			writeError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
