package middlewares

import (
	"net"
	"net/http"

	"github.com/losol/eventuras-idp/internal/metrics"

	"github.com/gorilla/mux"
)

// RateLimiter is the admission gate in front of the flow endpoints.
// A denied request must cause no side effects at all.
type RateLimiter interface {
	Allow(key string) bool
}

func RateLimitMiddleware(limiter RateLimiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				metrics.RateLimitRejections.Inc()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too_many_requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
