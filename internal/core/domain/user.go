// Package domain defines the core domain models for authclient.
package domain

import "strings"

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole normalizes a role value the way the API stores it
// (trimmed, lower case). Unknown values are returned as-is so callers can
// decide whether to reject them.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// IsAdmin reports whether r grants administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// User is the identity record returned by the authentication API.
//
// A User is immutable for the lifetime of a session.
type User struct {
	// ID is the server-side identifier. Zero when the server omitted it.
	ID int64 `json:"id,omitempty" yaml:"id,omitempty"`

	Username string `json:"username" yaml:"username"`
	Role     Role   `json:"role" yaml:"role"`
}

// Credentials are the login form values.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegistrationRequest is the payload for creating a new account.
type RegistrationRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=user admin"`
}

// Form field names shared by the login and registration forms.
const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldRole     = "role"
)
