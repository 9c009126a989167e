package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/halcyonlabs/site-gateway/config"
	"github.com/halcyonlabs/site-gateway/internal/adapters/googleauth"
	"github.com/halcyonlabs/site-gateway/internal/adapters/token"
	"github.com/halcyonlabs/site-gateway/internal/adapters/upstream"
	"github.com/halcyonlabs/site-gateway/internal/service"
)

// AuthDeps groups inputs for building the auth service.
type AuthDeps struct {
	Config   *config.AppConfig
	Upstream *upstream.Client
	Logger   *slog.Logger
}

// AuthComponents is everything auth-related the HTTP layer needs.
type AuthComponents struct {
	Service *service.AuthService
	Codec   *token.Codec
	// Google is nil when Google sign-in is not configured.
	Google *googleauth.Provider
}

// BuildAuth wires the token codec, the optional Google provider, and the
// auth service. Google discovery failures disable that channel rather than
// taking the gateway down: credential sign-in still works.
func BuildAuth(ctx context.Context, deps AuthDeps) (*AuthComponents, error) {
	cfg := deps.Config

	codec, err := token.NewCodec(token.Config{
		Secret: []byte(cfg.Session.Secret),
		TTL:    cfg.Session.TTL,
		Issuer: cfg.Session.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("build token codec: %w", err)
	}

	var google *googleauth.Provider
	if cfg.Google.Enabled() {
		google, err = googleauth.NewProvider(ctx, googleauth.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		})
		if err != nil {
			if deps.Logger != nil {
				deps.Logger.Warn("google sign-in disabled: provider discovery failed", "error", err)
			}
			google = nil
		}
	}

	opts := service.AuthServiceOptions{
		Credentials: deps.Upstream,
		Linker:      deps.Upstream,
		Codec:       codec,
	}
	if google != nil {
		opts.Assertions = google
	}

	return &AuthComponents{
		Service: service.NewAuthService(opts),
		Codec:   codec,
		Google:  google,
	}, nil
}
