package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Identity represents the user record the upstream backend returns after a
// successful credential check or account link. Adapters map backend payloads
// into this shape.
type Identity struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// Assertion is a verified third-party sign-in claim. The provider is
// responsible for signature, audience, and expiry checks; by the time an
// Assertion exists those have already passed.
type Assertion struct {
	Subject       string
	Email         string
	FirstName     string
	LastName      string
	EmailVerified bool
}

// Principal is the authenticated identity derived from one valid session
// token for one request. It is never persisted.
type Principal struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"-"`
}

// IsAdmin returns true if the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
