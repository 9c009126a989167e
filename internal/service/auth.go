package service

import (
	"context"
	"fmt"
	"strings"

	domainauth "github.com/halcyonlabs/site-gateway/internal/domain/auth"
	apperrors "github.com/halcyonlabs/site-gateway/internal/errors"
	"github.com/halcyonlabs/site-gateway/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Credentials ports.CredentialVerifier
	Linker      ports.IdentityLinker
	Assertions  ports.AssertionVerifier
	Codec       ports.TokenCodec
}

// AuthService reconciles the two sign-in channels into one canonical session
// representation: whichever channel authenticates, exactly one session token
// is minted from the upstream identity.
type AuthService struct {
	credentials ports.CredentialVerifier
	linker      ports.IdentityLinker
	assertions  ports.AssertionVerifier
	codec       ports.TokenCodec
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		credentials: opts.Credentials,
		linker:      opts.Linker,
		assertions:  opts.Assertions,
		codec:       opts.Codec,
	}
}

// LoginResult contains the minted session token and the identity it was
// minted from. The token reaches the client only inside the session cookie.
type LoginResult struct {
	Token string
	User  domainauth.Identity
}

// LoginWithCredentials authenticates with the password channel. The upstream
// backend owns the credential check; on success a session token is minted
// locally from the returned identity.
func (s *AuthService) LoginWithCredentials(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}
	if password == "" {
		return nil, apperrors.ValidationField("password", "password is required")
	}

	identity, err := s.credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	return s.mintSession(identity)
}

// LoginWithGoogle authenticates with the OAuth channel. The assertion is
// verified by the provider, forwarded upstream for account linking, and the
// resulting identity goes through the same mint step as the password channel.
func (s *AuthService) LoginWithGoogle(ctx context.Context, rawIDToken string) (*LoginResult, error) {
	if strings.TrimSpace(rawIDToken) == "" {
		return nil, apperrors.ValidationField("idToken", "identity token is required")
	}
	if s.assertions == nil {
		return nil, apperrors.NotFound("google sign-in is not configured")
	}

	assertion, err := s.assertions.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify assertion: %w", err)
	}

	return s.LoginWithAssertion(ctx, assertion)
}

// LoginWithAssertion finishes an OAuth sign-in from an already-verified
// assertion. The code-flow callback lands here after its own verification.
func (s *AuthService) LoginWithAssertion(ctx context.Context, assertion domainauth.Assertion) (*LoginResult, error) {
	if !assertion.EmailVerified {
		return nil, apperrors.Unauthenticated("email address is not verified by the provider")
	}

	identity, err := s.linker.LinkIdentity(ctx, ports.LinkInput{
		Provider:  "google",
		Subject:   assertion.Subject,
		Email:     assertion.Email,
		FirstName: assertion.FirstName,
		LastName:  assertion.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("link identity: %w", err)
	}

	return s.mintSession(identity)
}

// mintSession is the single convergence point for both sign-in channels.
func (s *AuthService) mintSession(identity domainauth.Identity) (*LoginResult, error) {
	principal := domainauth.Principal{
		ID:    identity.ID,
		Email: identity.Email,
		Role:  identity.Role,
	}

	token, err := s.codec.Encode(principal)
	if err != nil {
		return nil, fmt.Errorf("mint session token: %w", err)
	}

	return &LoginResult{Token: token, User: identity}, nil
}
