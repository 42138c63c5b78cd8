package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")

	ErrKeyTooShort = errors.New("jwtx: signing key too short")
)

// Verifier validates a token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// MinKeyBytes is the smallest signing secret we accept. HMAC-SHA256 keys
// below this offer less than the hash's security level.
const MinKeyBytes = 32

// HS256 signs and verifies session tokens with a single symmetric key.
// The key is injected once at startup and must never be logged or
// returned to clients. Rotating the key invalidates every outstanding
// token; there is no grace mechanism.
type HS256 struct {
	key    []byte
	issuer string
}

func NewHS256(key []byte, issuer string) (*HS256, error) {
	if len(key) < MinKeyBytes {
		return nil, ErrKeyTooShort
	}
	return &HS256{key: key, issuer: issuer}, nil
}

// Alg returns the JWA algorithm identifier.
func (h *HS256) Alg() string { return "HS256" }

// Sign produces a compact signed token over the given claims.
func (h *HS256) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(h.key)
}

// Verify parses the token, checks the signature and the registered time
// claims, and returns the embedded claims. Errors are mapped to the jwtx
// sentinels so callers can branch with errors.Is; the HTTP boundary
// collapses all of them into a generic unauthorized response.
func (h *HS256) Verify(token string) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return h.key, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// Check signs and verifies a throwaway token, exercising the full signing
// path end to end. Readiness probes use it to report signer health.
func (h *HS256) Check() error {
	claims := NewSessionClaims("healthcheck", "", "", time.Minute, h.issuer, time.Now().UTC())

	token, err := h.Sign(claims)
	if err != nil {
		return err
	}

	_, err = h.Verify(token)
	return err
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrAlgMismatch
	default:
		return ErrMalformed
	}
}
