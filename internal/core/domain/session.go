// Package domain defines the core domain models for authclient.
package domain

// Session is the durable (token, user) pair representing an authenticated
// identity. Token and User are always written and cleared together.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Valid reports whether both halves of the pair are present.
func (s Session) Valid() bool {
	return s.Token != "" && s.User.Username != "" && s.User.Role != ""
}

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool {
	return s.User.Role.IsAdmin()
}
