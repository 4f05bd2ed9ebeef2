package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const (
	// AccessTokenCookie holds the session token for browser clients.
	AccessTokenCookie = "devex_session"
	// ClientTypeHeader lets non-browser clients opt out of cookies.
	ClientTypeHeader = "X-Client-Type"
)

var ErrNoTokenCookie = errors.New("no session cookie")

// SetAuthCookie stores the session token in an HttpOnly cookie.
func SetAuthCookie(w http.ResponseWriter, token string, isProduction bool, duration time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(duration.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookie expires the session cookie.
func ClearAuthCookie(w http.ResponseWriter, isProduction bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func GetAccessTokenFromCookie(r *http.Request) (string, error) {
	c, err := r.Cookie(AccessTokenCookie)
	if err != nil || c.Value == "" {
		return "", ErrNoTokenCookie
	}
	return c.Value, nil
}

// ShouldUseCookies reports whether the caller is a browser. API clients send
// "X-Client-Type: api" to get the token in the response body instead.
func ShouldUseCookies(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get(ClientTypeHeader), "api") {
		return false
	}
	return r.Header.Get("Origin") != "" || strings.Contains(r.Header.Get("Accept"), "text/html")
}
