package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimitByIP applies per-IP rate limiting for unauthenticated endpoints
// (the auth routes). Uses chi's RealIP middleware value via r.RemoteAddr.
// Stale entries are cleaned up every 10 minutes.
func RateLimitByIP(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiterFor := newLimiterPool(ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiterFor(r.RemoteAddr).Allow() {
				tooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByUser applies per-user rate limiting on authenticated endpoints.
// Requests without a user in context (Auth middleware not applied) pass
// through unlimited.
func RateLimitByUser(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiterFor := newLimiterPool(ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := UserEmailFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if !limiterFor(email).Allow() {
				tooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// newLimiterPool returns a keyed limiter lookup with background cleanup of
// entries idle for more than 30 minutes.
func newLimiterPool(ctx context.Context, requestsPerSecond float64, burst int) func(string) *rate.Limiter {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*clientLimiter)
	)

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				cutoff := time.Now().Add(-30 * time.Minute)
				for key, cl := range limiters {
					if cl.lastAccess.Before(cutoff) {
						delete(limiters, key)
					}
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	return func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		cl, ok := limiters[key]
		if !ok {
			cl = &clientLimiter{
				limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
				lastAccess: time.Now(),
			}
			limiters[key] = cl
		} else {
			cl.lastAccess = time.Now()
		}
		return cl.limiter
	}
}

func tooManyRequests(w http.ResponseWriter) {
	http.Error(w, `{"success":false,"message":"rate limit exceeded"}`, http.StatusTooManyRequests)
}
