package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/karhulabs/authd/internal/auth/domain"
	"github.com/karhulabs/authd/internal/auth/store"
	"github.com/karhulabs/authd/pkg/cryptox"
	"github.com/karhulabs/authd/pkg/idx"
	"github.com/karhulabs/authd/pkg/jwtx"
	"github.com/karhulabs/authd/pkg/slogx"
)

var (
	ErrMissingFields      = errors.New("service: missing required fields")
	ErrInvalidRole        = errors.New("service: invalid role")
	ErrDuplicateUser      = errors.New("service: user already exists")
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	ErrUserNotFound       = errors.New("service: user not found")
)

// AuthService orchestrates the credential store, the password hasher and
// the token signer to implement signup, login and "who am I". Each call is
// stateless given the store's current contents.
type AuthService struct {
	Store      store.Store
	Signer     *jwtx.HS256
	Issuer     string
	SessionTTL time.Duration
}

type SignupParams struct {
	Email    string
	Name     string
	Password string
	Role     string // open string in transit; validated against the closed enum
}

// Signup registers a new user and issues a session token for it.
//
// Duplicate emails are checked twice: a pre-check by normalized email for
// the common case, and the store's uniqueness constraint as the final
// authority when two signups race. Both paths return ErrDuplicateUser.
func (s *AuthService) Signup(ctx context.Context, p SignupParams) (domain.Session, error) {
	log := slogx.FromContext(ctx)

	// Normalize before the presence check so whitespace-only input
	// counts as missing, not as an empty persisted value.
	email := normalizeEmail(p.Email)
	name := strings.TrimSpace(p.Name)

	if email == "" || name == "" || p.Password == "" {
		return domain.Session{}, ErrMissingFields
	}

	role, err := domain.ParseRole(p.Role)
	if err != nil {
		return domain.Session{}, ErrInvalidRole
	}

	_, err = s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.Session{}, ErrDuplicateUser
	case !errors.Is(err, store.ErrNotFound):
		return domain.Session{}, fmt.Errorf("lookup existing user: %w", err)
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.Store.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		// Lost the race between pre-check and insert: treat the store's
		// constraint violation exactly like the pre-check outcome.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Session{}, ErrDuplicateUser
		}
		return domain.Session{}, fmt.Errorf("create user: %w", err)
	}

	log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role.String()),
	)

	return s.issueSession(user)
}

// Login authenticates an email/password pair and issues a session token.
//
// "No such user" and "wrong password" are deliberately indistinguishable:
// both return ErrInvalidCredentials so responses never leak which emails
// are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	log := slogx.FromContext(ctx)

	if email == "" || password == "" {
		return domain.Session{}, ErrMissingFields
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Info("login failed", slog.String("user_id", user.ID))
			return domain.Session{}, ErrInvalidCredentials
		}
		// A stored hash that can't be parsed is corrupted data, not a
		// wrong password. Surface it as a server-side fault.
		return domain.Session{}, fmt.Errorf("verify password: %w", err)
	}

	return s.issueSession(user)
}

// WhoAmI resolves a previously verified token subject to its user record.
func (s *AuthService) WhoAmI(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The subject was deleted out-of-band after the token was issued.
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueSession(user domain.User) (domain.Session, error) {
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(
		user.ID,
		user.Email,
		user.Role.String(),
		ttl,
		s.Issuer,
		time.Now().UTC(),
	)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign session token: %w", err)
	}

	return domain.Session{Token: token, User: user}, nil
}

// normalizeEmail lowercases and trims the address so lookups and storage
// agree on a single canonical form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
