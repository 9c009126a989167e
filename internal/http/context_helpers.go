package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/halcyonlabs/site-gateway/internal/domain/auth"
)

// principalKey is an unexported context key type for the request principal.
type principalKey struct{}

// SetPrincipalInContext stores the authenticated principal in the context.
func SetPrincipalInContext(ctx context.Context, p domainauth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (domainauth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domainauth.Principal)
	return p, ok
}

// PrincipalFromRequest is a convenience wrapper over PrincipalFromContext.
func PrincipalFromRequest(r *http.Request) (domainauth.Principal, bool) {
	return PrincipalFromContext(r.Context())
}
