package domain

import "time"

type User struct {
	ID           string
	Email        string // stored lowercase, unique
	Name         string
	PasswordHash string // argon2 encoded, never serialized
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
