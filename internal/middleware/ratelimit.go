package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/config"
)

// RateLimiter throttles requests for one named scope, keyed per principal
// (user id when authenticated, remote address otherwise).
type RateLimiter struct {
	scope    string
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	logger   *logrus.Logger
}

// NewRateLimiter builds a limiter from a fixed-window quota. The bucket
// refills at quota-rate with a burst of the full window allowance.
func NewRateLimiter(scope string, q config.Quota, logger *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		scope:    scope,
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(q.Window / time.Duration(q.Requests)),
		burst:    q.Requests,
		logger:   logger,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Allow reports whether the given key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Handler returns the rate limiting middleware handler.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(requestKey(r)) {
			rl.logger.WithFields(logrus.Fields{
				"scope": rl.scope,
				"path":  r.URL.Path,
			}).Warn("rate limit exceeded")
			apierror.Write(w, apierror.RateLimited(rl.scope))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GlobalRateLimiter applies the anonymous quota to unauthenticated callers
// and the user quota to authenticated ones.
type GlobalRateLimiter struct {
	anon *RateLimiter
	user *RateLimiter
}

func NewGlobalRateLimiter(anon, user config.Quota, logger *logrus.Logger) *GlobalRateLimiter {
	return &GlobalRateLimiter{
		anon: NewRateLimiter("anon", anon, logger),
		user: NewRateLimiter("user", user, logger),
	}
}

func (g *GlobalRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := g.anon
		if PrincipalFrom(r.Context()).Authenticated {
			limiter = g.user
		}
		if !limiter.Allow(requestKey(r)) {
			apierror.Write(w, apierror.RateLimited(limiter.scope))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestKey(r *http.Request) string {
	if p := PrincipalFrom(r.Context()); p.Authenticated {
		return p.UserID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
