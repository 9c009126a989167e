package httpx

import "net/http"

// allowedHeaders is the header set every preflight advertises.
const allowedHeaders = "Content-Type, Authorization, Cookie"

// CORS decorates responses with the cross-origin headers browser-based
// callers on a different origin need to read them.
type CORS struct {
	// Origin is the single allowed origin. Credentials rule out a wildcard.
	Origin string
}

// Decorate attaches the cross-origin response headers. Called on every
// proxied response regardless of outcome, including failures from the
// authorization gate; idempotent so layered handlers can each decorate.
func (c CORS) Decorate(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", c.Origin)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Vary", "Origin")
}

// Preflight answers a cross-origin preflight with the capability set the
// route supports. Preflight requests carry no credentials, so this never
// consults the authorization gate.
func (c CORS) Preflight(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		c.Decorate(w)
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
		w.Header().Set("Access-Control-Max-Age", "600")
		w.WriteHeader(http.StatusOK)
	}
}
