package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rigaestates/listings-api/internal/http/response"
	"github.com/rigaestates/listings-api/internal/platform/ratelimit"
	"github.com/rigaestates/listings-api/pkg/logger"
)

// AccessRateLimit throttles the access-gate endpoints per client IP.
// Store errors fail open.
func AccessRateLimit(limiter ratelimit.Limiter, requestsPerMin int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "access:" + ClientIP(r)

			allowed, err := limiter.Allow(r.Context(), key, requestsPerMin, time.Minute)
			if err != nil {
				logger.ErrorContext(r.Context(), "Rate limit check failed", "error", err)
			} else if !allowed {
				response.RateLimit(w, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the caller's address, preferring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
