package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"

	domainauth "github.com/halcyonlabs/site-gateway/internal/domain/auth"
	apperrors "github.com/halcyonlabs/site-gateway/internal/errors"
	"github.com/halcyonlabs/site-gateway/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialVerifier = (*MockCredentialVerifier)(nil)
	_ ports.IdentityLinker     = (*MockIdentityLinker)(nil)
	_ ports.AssertionVerifier  = (*MockAssertionVerifier)(nil)
	_ ports.TokenCodec         = (*MockTokenCodec)(nil)
)

// MockCredentialVerifier simulates the upstream credential check.
type MockCredentialVerifier struct {
	VerifyFunc func(ctx context.Context, email, password string) (domainauth.Identity, error)

	// Accounts maps email -> password for the default behavior.
	Accounts map[string]string
	// Identity returned for any accepted email; ID/Email filled per call.
	DefaultRole domainauth.Role
}

// NewMockCredentialVerifier accepts a single admin account by default.
func NewMockCredentialVerifier() *MockCredentialVerifier {
	return &MockCredentialVerifier{
		Accounts:    map[string]string{"a@b.com": "secret"},
		DefaultRole: domainauth.RoleAdmin,
	}
}

func (m *MockCredentialVerifier) VerifyCredentials(ctx context.Context, email, password string) (domainauth.Identity, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, email, password)
	}
	if pw, ok := m.Accounts[email]; !ok || pw != password {
		return domainauth.Identity{}, apperrors.Unauthenticated("invalid email or password")
	}
	role := m.DefaultRole
	if role == "" {
		role = domainauth.RoleUser
	}
	return domainauth.Identity{ID: "1", Email: email, Role: role}, nil
}

// MockIdentityLinker simulates upstream account linking.
type MockIdentityLinker struct {
	LinkFunc func(ctx context.Context, in ports.LinkInput) (domainauth.Identity, error)
}

func (m *MockIdentityLinker) LinkIdentity(ctx context.Context, in ports.LinkInput) (domainauth.Identity, error) {
	if m.LinkFunc != nil {
		return m.LinkFunc(ctx, in)
	}
	return domainauth.Identity{
		ID:        "linked-1",
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      domainauth.RoleUser,
	}, nil
}

// MockAssertionVerifier simulates the external identity token check.
type MockAssertionVerifier struct {
	VerifyAssertionFunc func(ctx context.Context, rawIDToken string) (domainauth.Assertion, error)
}

func (m *MockAssertionVerifier) Verify(ctx context.Context, rawIDToken string) (domainauth.Assertion, error) {
	if m.VerifyAssertionFunc != nil {
		return m.VerifyAssertionFunc(ctx, rawIDToken)
	}
	if rawIDToken == "" {
		return domainauth.Assertion{}, apperrors.Unauthenticated("identity token is required")
	}
	return domainauth.Assertion{
		Subject:       "google-sub-1",
		Email:         "mock.user@example.com",
		FirstName:     "Mock",
		LastName:      "User",
		EmailVerified: true,
	}, nil
}

// MockTokenCodec is a transparent codec for tests that do not exercise real
// signing. Encode produces "token-for:<id>"; Decode reverses it via Table.
type MockTokenCodec struct {
	EncodeFunc func(p domainauth.Principal) (string, error)
	DecodeFunc func(raw string) (domainauth.Principal, error)

	// Table maps raw token -> principal for the default Decode.
	Table map[string]domainauth.Principal
}

func (m *MockTokenCodec) Encode(p domainauth.Principal) (string, error) {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(p)
	}
	raw := "token-for:" + p.ID
	if m.Table == nil {
		m.Table = make(map[string]domainauth.Principal)
	}
	m.Table[raw] = p
	return raw, nil
}

func (m *MockTokenCodec) Decode(raw string) (domainauth.Principal, error) {
	if m.DecodeFunc != nil {
		return m.DecodeFunc(raw)
	}
	if p, ok := m.Table[raw]; ok {
		return p, nil
	}
	return domainauth.Principal{}, apperrors.Unauthenticated("invalid token")
}
