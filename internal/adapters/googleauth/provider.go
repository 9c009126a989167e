package googleauth

// Package googleauth verifies Google identity assertions for the OAuth
// sign-in path. Two entry points exist: Verify checks an ID token posted by
// the sign-in popup, and Begin/Exchange drive the server-side code flow for
// browsers that block popups. Signature, audience, and expiry checks belong
// to the go-oidc verifier, not to this gateway.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/halcyonlabs/site-gateway/internal/domain/auth"
	apperrors "github.com/halcyonlabs/site-gateway/internal/errors"
	"github.com/halcyonlabs/site-gateway/internal/ports"
)

// GoogleIssuer is the OIDC issuer for Google accounts.
const GoogleIssuer = "https://accounts.google.com"

// Config holds configuration for the Google provider.
type Config struct {
	ClientID     string
	ClientSecret string // required only for the code flow
	RedirectURL  string
	Issuer       string       // defaults to GoogleIssuer; overridable for tests
	HTTPClient   *http.Client // optional
}

// Provider implements assertion verification and the optional code flow.
type Provider struct {
	verifier *gooidc.IDTokenVerifier
	oauth    *oauth2.Config
}

var _ ports.AssertionVerifier = (*Provider)(nil)

// NewProvider performs OIDC discovery against the issuer and prepares the
// verifier and OAuth2 config.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = GoogleIssuer
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = gooidc.ClientContext(ctx, httpClient)
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	return &Provider{
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{gooidc.ScopeOpenID, "profile", "email"},
			Endpoint:     op.Endpoint(),
		},
	}, nil
}

// assertionClaims is the subset of Google ID token claims the gateway reads.
type assertionClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Nonce         string `json:"nonce"`
}

// Verify validates a raw ID token and extracts the identity assertion.
func (p *Provider) Verify(ctx context.Context, rawIDToken string) (domainauth.Assertion, error) {
	return p.verifyWithNonce(ctx, rawIDToken, "")
}

func (p *Provider) verifyWithNonce(ctx context.Context, rawIDToken, expectedNonce string) (domainauth.Assertion, error) {
	if rawIDToken == "" {
		return domainauth.Assertion{}, apperrors.Unauthenticated("identity token is required")
	}

	idTok, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return domainauth.Assertion{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "verify identity token")
	}

	var claims assertionClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return domainauth.Assertion{}, apperrors.Wrap(claimsErr, apperrors.ErrCodeUnauthenticated, "parse identity token claims")
	}
	if expectedNonce != "" && claims.Nonce != expectedNonce {
		return domainauth.Assertion{}, apperrors.Unauthenticated("invalid nonce")
	}
	if claims.Email == "" {
		return domainauth.Assertion{}, apperrors.Unauthenticated("identity token carries no email")
	}

	return domainauth.Assertion{
		Subject:       idTok.Subject,
		Email:         claims.Email,
		FirstName:     claims.GivenName,
		LastName:      claims.FamilyName,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// BeginResult contains the provider redirect URL with its state and nonce.
type BeginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// Begin starts the server-side code flow.
func (p *Provider) Begin(_ context.Context) (*BeginResult, error) {
	if p.oauth.RedirectURL == "" || p.oauth.ClientSecret == "" {
		return nil, errors.New("code flow requires a client secret and redirect URL")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	authURL := p.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return &BeginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	Nonce string
}

// Exchange completes the code flow, verifying the returned ID token against
// the nonce minted by Begin.
func (p *Provider) Exchange(ctx context.Context, in ExchangeInput) (domainauth.Assertion, error) {
	if in.Code == "" {
		return domainauth.Assertion{}, apperrors.Validation("authorization code is required")
	}

	tok, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Assertion{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "exchange authorization code")
	}

	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return domainauth.Assertion{}, apperrors.Unauthenticated("missing id_token in token response")
	}

	return p.verifyWithNonce(ctx, rawID, in.Nonce)
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
