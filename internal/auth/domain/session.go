package domain

// Session is what a successful signup or login hands back: a stateless
// bearer token plus the user it was minted for. The token is not stored
// server-side and cannot be revoked before it expires.
type Session struct {
	Token string
	User  User
}
