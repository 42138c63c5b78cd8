package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token. Tokens are
// stateless bearer credentials; there is no revocation list, so a token
// stays valid for its full lifetime regardless of server-side changes.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Claims are the session-token claims. The subject is the user id; email
// and role are carried so the boundary can authorize without a store
// round-trip.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a session token.
func NewSessionClaims(
	subject, email, role string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  role,
	}
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}
