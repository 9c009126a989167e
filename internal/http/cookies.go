package httpx

import (
	"net/http"
	"time"
)

// SessionCookieName is the name of the HTTP-only session cookie.
const SessionCookieName = "auth-token"

// CookieWriter sets and clears the session cookie. It mutates only response
// headers and never fails.
type CookieWriter struct {
	// Domain for the cookie; empty uses the request domain.
	Domain string
	// Secure is true outside local development.
	Secure bool
}

// ReadToken extracts the raw session token from the request cookie.
func ReadToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// WriteSession sets the session cookie carrying the encoded token. The
// cookie is never readable by client-side script. No Max-Age on mint: the
// cookie is session-scoped and the token's own expiry bounds its life.
func (cw CookieWriter) WriteSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   cw.Domain,
		HttpOnly: true,
		Secure:   cw.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSession overwrites the session cookie with an empty value and an
// immediate expiry so the browser discards it. Mirrors the attributes used
// when setting the cookie to maximize deletion compatibility across browsers.
func (cw CookieWriter) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cw.Domain,
		HttpOnly: true,
		Secure:   cw.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

// oauthCookie attributes for the short-lived state/nonce cookies used by the
// server-side code flow.
func (cw CookieWriter) setFlowCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cw.Domain,
		HttpOnly: true,
		Secure:   cw.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})
}

func (cw CookieWriter) clearFlowCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cw.Domain,
		HttpOnly: true,
		Secure:   cw.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}
