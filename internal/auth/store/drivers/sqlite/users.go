package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/karhulabs/authd/internal/auth/domain"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, email, name, password_hash, role, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	return u, nil
}
