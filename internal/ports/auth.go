package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/halcyonlabs/site-gateway/internal/domain/auth"
)

// CredentialVerifier checks primary credentials against the upstream backend,
// which owns the password check. The gateway never stores password hashes.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, email, password string) (domainauth.Identity, error)
}

// LinkInput carries the verified third-party identity forwarded to the
// upstream for account linking or creation.
type LinkInput struct {
	Provider  string
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

// IdentityLinker forwards a verified external identity to the upstream and
// returns the linked account.
type IdentityLinker interface {
	LinkIdentity(ctx context.Context, in LinkInput) (domainauth.Identity, error)
}

// AssertionVerifier validates a third-party identity assertion (signature,
// audience, expiry are the provider's responsibility) and returns its claims.
type AssertionVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (domainauth.Assertion, error)
}

// TokenCodec mints and validates signed session tokens. Implementations are
// pure: no I/O, deterministic given the same secret and clock.
type TokenCodec interface {
	Encode(p domainauth.Principal) (string, error)
	Decode(raw string) (domainauth.Principal, error)
}
