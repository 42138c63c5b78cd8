package domain

import "errors"

// Role is a closed enumeration. It travels as an open string in requests
// and is rejected at the validation boundary if it isn't one of these.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var ErrUnknownRole = errors.New("domain: unknown role")

// ParseRole validates a role string received in transit. The empty string
// defaults to RoleUser.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleUser, nil
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}

func (r Role) String() string { return string(r) }
