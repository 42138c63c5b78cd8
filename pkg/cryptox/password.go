package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"crypto/rand"

	"golang.org/x/crypto/argon2"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

// ErrPasswordMismatch is the verification failure for a well-formed hash.
// Anything else VerifyPassword returns means the stored hash itself is
// malformed and must be treated as a server-side fault, not a wrong password.
var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// HashPassword generates a PHC-format Argon2id hash string including salt
// and parameters. It never fails for valid input short of the system RNG
// breaking.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64Salt,
		b64Hash,
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash. Returns ErrPasswordMismatch on a mismatch; any other error means the
// stored hash could not be parsed.
func VerifyPassword(password, encodedHash string) error {
	// Expected structure: ["", "argon2id", "v=19", "m=X,t=Y,p=Z", salt, hash]
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return errors.New("cryptox: invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return errors.New("cryptox: invalid hash format: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("cryptox: invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("cryptox: invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("cryptox: invalid hash format: failed to decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("cryptox: invalid hash format: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - If this overflows we have bigger problems
	)

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}
