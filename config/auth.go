package config

import "time"

const (
	minSessionTTL = time.Minute
	maxSessionTTL = 30 * 24 * time.Hour
)

// SessionConfig contains session token configuration.
type SessionConfig struct {
	// Secret signs session tokens. Required: there is no degraded mode
	// without it, only a fatal configuration error at startup.
	Secret string `env:"SESSION_SECRET"`

	// TTL bounds session token expiry. Expiry is the only
	// server-independent way a session ends.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Issuer is the iss claim on minted tokens.
	Issuer string `env:"SESSION_ISSUER" envDefault:"site-gateway"`
}

// Sanitize clamps the TTL into a sane range.
func (s *SessionConfig) Sanitize() {
	if s.TTL < minSessionTTL {
		s.TTL = minSessionTTL
	}
	if s.TTL > maxSessionTTL {
		s.TTL = maxSessionTTL
	}
}

// GoogleConfig contains Google sign-in configuration. Sign-in via Google is
// a convenience: when ClientID is empty the feature is disabled and only the
// credential channel remains.
type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/auth/google/callback"`
}

// Enabled reports whether Google sign-in is configured at all.
func (g GoogleConfig) Enabled() bool { return g.ClientID != "" }

// CodeFlowEnabled reports whether the server-side code flow can run.
func (g GoogleConfig) CodeFlowEnabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURL != ""
}
