package service

import (
	"context"
	"sync"

	"github.com/yndnr/authclient/internal/core/domain"
)

// LoginFlow submits credentials and, on success, persists the session.
// LoginFlow is the only writer of the session.
type LoginFlow struct {
	client   Authenticator
	sessions Sessions
	flowDeps

	guard submitGuard

	mu      sync.Mutex
	formErr domain.FormError
}

// NewLoginFlow creates a LoginFlow.
func NewLoginFlow(client Authenticator, sessions Sessions, opts ...FlowOption) *LoginFlow {
	return &LoginFlow{
		client:   client,
		sessions: sessions,
		flowDeps: newFlowDeps("login", opts),
		formErr:  domain.NewFormError(),
	}
}

// Submit logs in with creds. On success the session is saved and the
// landing route for the user's role is returned. On failure the session is
// left untouched and the error is a *domain.AuthError, except for
// ErrSubmitInProgress and session write failures.
func (f *LoginFlow) Submit(ctx context.Context, creds domain.Credentials) (domain.Navigation, error) {
	end, err := f.guard.begin()
	if err != nil {
		f.metrics.SubmitRejected("login")
		return domain.Navigation{}, err
	}
	defer end()

	f.setError(domain.NewFormError())

	if ae := validateForm(creds); ae != nil {
		f.setError(domain.FormErrorFrom(ae))
		return domain.Navigation{}, ae
	}

	sess, err := f.client.Login(ctx, creds)
	if err != nil {
		ae := classify(err, domain.MsgLoginFailed)
		f.setError(domain.FormErrorFrom(ae))
		f.logger.Warn("login failed", "username", creds.Username, "kind", ae.Kind, "status", ae.Status)
		return domain.Navigation{}, ae
	}

	if err := f.sessions.Save(ctx, sess); err != nil {
		f.setError(domain.FormError{Message: err.Error(), Fields: map[string]string{}})
		return domain.Navigation{}, err
	}

	f.logger.Info("logged in", "username", sess.User.Username, "role", sess.User.Role)
	user := sess.User
	return domain.Navigation{Route: domain.RouteForRole(user.Role), User: &user}, nil
}

// Logout clears the session and returns the entry route. It does not wait
// for, or interfere with, an outstanding Submit.
func (f *LoginFlow) Logout(ctx context.Context) (domain.Navigation, error) {
	if err := f.sessions.Clear(ctx); err != nil {
		return domain.Navigation{}, err
	}
	f.logger.Info("logged out")
	return domain.Navigation{Route: domain.RouteEntry}, nil
}

// Error returns a copy of the current form error.
func (f *LoginFlow) Error() domain.FormError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.formErr.Clone()
}

// State returns the submission state.
func (f *LoginFlow) State() SubmitState {
	return f.guard.current()
}

func (f *LoginFlow) setError(fe domain.FormError) {
	f.mu.Lock()
	f.formErr = fe
	f.mu.Unlock()
}
