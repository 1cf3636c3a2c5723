package service

import (
	"context"

	"github.com/yndnr/authclient/internal/core/domain"
)

// Authenticator performs the remote API calls. Implementations classify
// every failure into a *domain.AuthError.
type Authenticator interface {
	// Login exchanges credentials for a session.
	Login(ctx context.Context, creds domain.Credentials) (domain.Session, error)

	// Register creates a new account on behalf of the bearer.
	Register(ctx context.Context, req domain.RegistrationRequest, bearer string) (domain.User, error)

	// ListUsers returns all accounts visible to the bearer.
	ListUsers(ctx context.Context, bearer string) ([]domain.User, error)

	// DeleteUser removes the account with the given ID.
	DeleteUser(ctx context.Context, bearer string, id int64) error
}

// Sessions is the persistence contract the flows depend on.
type Sessions interface {
	Save(ctx context.Context, s domain.Session) error
	Load(ctx context.Context) (domain.Session, bool)
	Clear(ctx context.Context) error
}
