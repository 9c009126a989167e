package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Session and Google sign-in configuration
//   - http.go: HTTP server, upstream, and CORS configuration
type AppConfig struct {
	// IsDev controls development mode behavior (insecure cookies, text logs).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Session configuration
	Session SessionConfig

	// Google sign-in configuration
	Google GoogleConfig `envPrefix:"GOOGLE_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Upstream backend configuration
	Upstream UpstreamConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()
	c.HTTP.Sanitize(c.Upstream.BaseURL, c.IsDev)
	c.Session.Sanitize()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
