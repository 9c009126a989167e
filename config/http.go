package config

import (
	"net/url"
	"time"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for the session cookie.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CookieSecure marks the session cookie Secure. Defaults to the
	// inverse of dev mode when unset.
	CookieSecure *bool `env:"APP_COOKIE_SECURE"`

	// AllowedOrigin is the cross-origin caller allowed to read responses.
	// Empty derives the origin from the upstream base URL.
	AllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:""`

	// LoginRatePerMinute bounds sign-in attempts per client IP.
	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"30"`

	// LoginBurst is the sign-in rate limiter burst size.
	LoginBurst int `env:"LOGIN_BURST" envDefault:"5"`
}

// SecureCookies resolves the effective Secure attribute.
func (h *HTTPConfig) SecureCookies(isDev bool) bool {
	if h.CookieSecure != nil {
		return *h.CookieSecure
	}
	return !isDev
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize(upstreamBaseURL string, _ bool) {
	if h.AllowedOrigin == "" {
		h.AllowedOrigin = originOf(upstreamBaseURL)
	}
	if h.LoginRatePerMinute < 1 {
		h.LoginRatePerMinute = 1
	}
	if h.LoginBurst < 1 {
		h.LoginBurst = 1
	}
}

// UpstreamConfig contains the upstream backend configuration. The backend is
// opaque: everything the gateway knows about it is a base URL and a timeout.
type UpstreamConfig struct {
	// BaseURL is where proxied calls and credential checks go.
	BaseURL string `env:"UPSTREAM_BASE_URL" envDefault:"http://localhost:5000"`

	// Timeout bounds each upstream call.
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"15s"`
}

// originOf reduces a URL to its scheme://host origin; empty when unparsable.
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
