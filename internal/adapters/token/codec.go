package token

// Package token implements the session token codec on top of HS256 JWTs.
// The signing secret is injected at construction so it can be swapped in
// tests; nothing here performs I/O.

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/halcyonlabs/site-gateway/internal/domain/auth"
)

const defaultIssuer = "site-gateway"

var (
	// ErrInvalidToken indicates a structurally malformed token or a
	// signature that does not verify under the configured secret.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a token whose expiry has elapsed.
	ErrExpiredToken = errors.New("token expired")
)

// Config holds construction parameters for the Codec.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string // defaults to "site-gateway"
}

// Codec encodes and decodes signed session tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	parser *jwt.Parser

	// now is swappable for tests.
	now func() time.Time
}

// sessionClaims is the wire shape of the session token payload.
type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// NewCodec constructs a Codec. The secret is required; a missing secret is a
// configuration fault, not something to degrade around.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("ttl must be greater than zero")
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = defaultIssuer
	}
	c := &Codec{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		issuer: issuer,
		now:    time.Now,
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Encode signs a session token for the given principal. The expiry is always
// derived from the codec's TTL; any ExpiresAt on the input is ignored.
func (c *Codec) Encode(p domainauth.Principal) (string, error) {
	if p.ID == "" {
		return "", errors.New("principal ID is required")
	}
	if !p.Role.Valid() {
		return "", errors.New("principal role is required")
	}

	now := c.now().UTC()
	claims := sessionClaims{
		Email: p.Email,
		Role:  string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Decode verifies the token signature and claims and reconstructs the
// principal. Failure kinds are distinct: ErrExpiredToken when the expiry has
// elapsed, ErrInvalidToken for everything else.
func (c *Codec) Decode(raw string) (domainauth.Principal, error) {
	if raw == "" {
		return domainauth.Principal{}, ErrInvalidToken
	}

	parsed, err := c.parser.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domainauth.Principal{}, ErrExpiredToken
		}
		return domainauth.Principal{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return domainauth.Principal{}, ErrInvalidToken
	}
	if claims.Subject == "" || !domainauth.Role(claims.Role).Valid() {
		return domainauth.Principal{}, ErrInvalidToken
	}

	p := domainauth.Principal{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  domainauth.Role(claims.Role),
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
