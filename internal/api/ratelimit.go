package api

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit bounds the request rate across all clients.
type RateLimit struct {
	RequestsPerSec float64
	Burst          int
}

// throttle rejects requests beyond the configured rate with 429. A zero
// rate disables limiting.
func throttle(limit RateLimit) func(http.Handler) http.Handler {
	if limit.RequestsPerSec <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	burst := limit.Burst
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(limit.RequestsPerSec), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
