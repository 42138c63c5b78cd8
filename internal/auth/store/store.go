package store

import (
	"context"
	"errors"

	"github.com/karhulabs/authd/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. It exposes sub-repositories to keep concerns tidy
// and testable.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the service via ULID).
	// Returns ErrAlreadyExists when the email unique index is violated; the
	// constraint is the final authority under concurrent signups.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// GetUserByEmail looks up a user by normalized (lowercase) email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// CountUsers returns the total number of registered users.
	CountUsers(ctx context.Context) (int64, error)
}
