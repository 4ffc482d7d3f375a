package http

import (
	"net/http"
	"time"
)

// RefreshCookieName is the cookie carrying the refresh token. HttpOnly keeps
// it away from script; the access token is the only token handed to JS.
const RefreshCookieName = "jf_refresh"

// CookieManager writes and clears the refresh cookie with consistent
// attributes. Secure is off in local development so plain-http testing works.
type CookieManager struct {
	Secure     bool
	RefreshTTL time.Duration // cookie lifetime for remembered sessions
}

// SetRefresh writes the refresh cookie. Remembered sessions get an explicit
// Max-Age so the cookie survives browser restarts; otherwise it is
// session-scoped and vanishes when the browser closes, even though the token
// inside remains valid for its signed lifetime.
func (c *CookieManager) SetRefresh(w http.ResponseWriter, token string, remember bool) {
	cookie := &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = int(c.RefreshTTL.Seconds())
	}
	http.SetCookie(w, cookie)
}

// ClearRefresh expires the refresh cookie.
func (c *CookieManager) ClearRefresh(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// refreshTokenFromRequest extracts the refresh token cookie value, or "".
func refreshTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
