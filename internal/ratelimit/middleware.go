package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/devextech/devex-api/internal/apperr"
	"github.com/devextech/devex-api/internal/httputil"
	"github.com/devextech/devex-api/internal/logging"
)

// Checker is the part of Limiter the middleware needs.
type Checker interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
}

var _ Checker = (*Limiter)(nil)

// PerIP rejects requests from IPs over their limit with 429. Redis failures
// are logged and the request is let through. A nil checker disables limiting.
func PerIP(checker Checker, purpose string, style httputil.ErrorStyle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if checker == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.GetLoggerFromContext(r.Context())
			ip := ClientIP(r)

			exceeded, err := checker.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
			if err != nil {
				logger.Error("failed to check IP rate limit", "error", err.Error())
			} else if exceeded {
				logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
				httputil.RespondError(w, r,
					apperr.RateLimited("Too many requests, please try again later").WithCode(httputil.CodeTooManyRequests),
					style)
				return
			}

			if err := checker.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
				logger.Error("failed to record IP request", "error", err.Error())
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client IP address from the request
func ClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
