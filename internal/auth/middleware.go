package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/devextech/devex-api/internal/apperr"
	"github.com/devextech/devex-api/internal/httputil"
	"github.com/devextech/devex-api/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserIDContextKey    ContextKey = "user_id"
	UserEmailContextKey ContextKey = "user_email"
	ClaimsContextKey    ContextKey = "token_claims"

	// APIKeyHeader carries the shared secret of trusted internal callers.
	APIKeyHeader = "X-API-Key"
)

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
	revoker      TokenRevoker
}

// NewMiddleware builds the auth middleware. revoker may be nil, in which case
// signed-out tokens stay valid until they expire.
func NewMiddleware(tokenService TokenService, revoker TokenRevoker) *Middleware {
	return &Middleware{tokenService: tokenService, revoker: revoker}
}

func unauthorized(w http.ResponseWriter, r *http.Request, message, code string) {
	httputil.RespondError(w, r, apperr.Unauthorized(message).WithCode(code), httputil.Nested)
}

// bearerToken returns the session token from the Authorization header or the
// session cookie. An empty token with a nil error means none was sent.
func bearerToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", errors.New("invalid authorization header format")
		}
		return parts[1], nil
	}
	if token, err := GetAccessTokenFromCookie(r); err == nil {
		return token, nil
	}
	return "", nil
}

// RequireAuth is a middleware that validates the session token
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		token, err := bearerToken(r)
		if err != nil {
			unauthorized(w, r, "Invalid authorization header format", httputil.CodeInvalidAuthHeader)
			return
		}
		if token == "" {
			unauthorized(w, r, "Authentication required", httputil.CodeMissingAuth)
			return
		}

		claims, err := m.tokenService.VerifyToken(token)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				unauthorized(w, r, "Token has expired", httputil.CodeTokenExpired)
				return
			}
			unauthorized(w, r, "Invalid token", httputil.CodeInvalidToken)
			return
		}

		if m.revoker != nil && claims.TokenID != "" {
			revoked, err := m.revoker.IsRevoked(r.Context(), claims.TokenID)
			if err != nil {
				// fail open; the token itself verified
				logger.Error("failed to check token revocation", "error", err.Error())
			} else if revoked {
				unauthorized(w, r, "Token has been revoked", httputil.CodeTokenRevoked)
				return
			}
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailContextKey, claims.Email)
		ctx = context.WithValue(ctx, ClaimsContextKey, claims)
		ctx = logging.ContextWithLogger(ctx, logger.WithFields(map[string]any{"user_id": claims.UserID}))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAPIKey only lets through requests carrying the given X-API-Key.
// With an empty key every request is rejected.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				logging.GetLoggerFromContext(r.Context()).Warn("rejected request with bad api key", "path", r.URL.Path)
				unauthorized(w, r, "Invalid API key", httputil.CodeInvalidAPIKey)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	return userID, ok && userID != ""
}

// GetUserEmailFromContext extracts the user email from the request context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailContextKey).(string)
	return email, ok
}

func GetClaimsFromContext(ctx context.Context) (*TokenClaims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*TokenClaims)
	return claims, ok
}
