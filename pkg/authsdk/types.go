package authsdk

import "time"

// User is the public view of a registered user. The password hash is never
// part of this shape under any field name.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"` // "USER" or "ADMIN"
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by signup (201) and login (200).
type SessionResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	User User `json:"user"`
}

// HealthChecks reports per-dependency status for the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
