// Package domain defines the core domain models for authclient.
package domain

// Route is a logical navigation target. Routes are not tied to any router;
// the CLI renders them as hints.
type Route string

const (
	RouteEntry    Route = "/"
	RouteRegister Route = "/register"
	RouteAdmin    Route = "/admin"
	RouteClient   Route = "/client"
	RouteUsers    Route = "/users"
)

// RouteForRole returns the landing area for a freshly authenticated user.
func RouteForRole(r Role) Route {
	if r.IsAdmin() {
		return RouteAdmin
	}
	return RouteClient
}

// Navigation is the navigation signal reported by a flow on completion.
// User is the account that just signed in. Success and NewUser are
// transient state carried to the target view.
type Navigation struct {
	Route   Route  `json:"route" yaml:"route"`
	User    *User  `json:"user,omitempty" yaml:"user,omitempty"`
	Success string `json:"success,omitempty" yaml:"success,omitempty"`
	NewUser *User  `json:"new_user,omitempty" yaml:"new_user,omitempty"`
}
