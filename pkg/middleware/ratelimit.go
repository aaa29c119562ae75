package middleware

import (
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"stay-concierge/pkg/utils"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"go.uber.org/zap"
)

const defaultIdleTTL = 10 * time.Minute

// UserRateLimiter holds one token bucket per caller. Buckets idle for longer
// than the configured TTL are evicted by the cache janitor.
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	idleTTL  time.Duration
	rps      rate.Limit
	burst    int
}

func NewUserRateLimiter(config utils.RateLimitConfig) *UserRateLimiter {
	burst := config.MessageBurst
	if burst <= 0 {
		burst = 5
	}
	rps := rate.Limit(config.MessagesPerSecond)
	if config.MessagesPerSecond <= 0 {
		rps = rate.Limit(1)
	}
	idleTTL := config.IdleTTL
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}

	return &UserRateLimiter{
		limiters: cache.New(idleTTL, idleTTL/2),
		idleTTL:  idleTTL,
		rps:      rps,
		burst:    burst,
	}
}

// getLimiter returns the bucket for key and pushes its expiry out by idleTTL.
func (l *UserRateLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.lookup(key)
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
	}
	l.limiters.Set(key, lim, l.idleTTL)
	return lim
}

func (l *UserRateLimiter) lookup(key string) (*rate.Limiter, bool) {
	v, ok := l.limiters.Get(key)
	if !ok {
		return nil, false
	}
	lim, ok := v.(*rate.Limiter)
	return lim, ok
}

// Len is the number of buckets currently tracked.
func (l *UserRateLimiter) Len() int {
	return l.limiters.ItemCount()
}

// RetryAfter is the whole number of seconds until one token refills.
func (l *UserRateLimiter) RetryAfter() int {
	if l.rps <= 0 {
		return 1
	}
	return int(math.Ceil(1 / float64(l.rps)))
}

// Allow reports whether key may proceed now.
func (l *UserRateLimiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

// clientKey identifies the caller: the session user when logged in, otherwise
// the remote host without its ephemeral port.
func clientKey(r *http.Request) string {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return userID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit - dipasang setelah AuthSession, fallback ke IP kalau belum login
func RateLimit(limiter *UserRateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded", zap.String("key", key), zap.String("path", r.URL.Path))
				utils.ResponseTooManyRequests(w, "Too many requests, slow down", limiter.RetryAfter())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
