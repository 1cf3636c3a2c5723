package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/yndnr/authclient/internal/core/domain"
)

// RegisterFlow creates accounts on behalf of the logged-in user.
//
// The flow never mutates the session. It reads the session on entry, for
// role options and again on each submit, so a logout in between is seen.
type RegisterFlow struct {
	client   Authenticator
	sessions Sessions
	flowDeps

	guard submitGuard

	mu      sync.Mutex
	form    domain.RegistrationRequest
	formErr domain.FormError
}

// NewRegisterFlow creates a RegisterFlow. It returns ErrUnauthenticated
// when no session is stored.
func NewRegisterFlow(ctx context.Context, client Authenticator, sessions Sessions, opts ...FlowOption) (*RegisterFlow, error) {
	if _, ok := sessions.Load(ctx); !ok {
		return nil, domain.ErrUnauthenticated
	}
	return &RegisterFlow{
		client:   client,
		sessions: sessions,
		flowDeps: newFlowDeps("register", opts),
		form:     domain.RegistrationRequest{Role: domain.RoleUser},
		formErr:  domain.NewFormError(),
	}, nil
}

// SetField updates a form field and clears that field's error. Other field
// errors and the global message are kept until the next submit.
func (f *RegisterFlow) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch name {
	case domain.FieldUsername:
		f.form.Username = value
	case domain.FieldPassword:
		f.form.Password = value
	case domain.FieldRole:
		f.form.Role = domain.ParseRole(value)
	default:
		return fmt.Errorf("unknown field %q", name)
	}

	if _, ok := f.formErr.Field(name); ok {
		f.formErr = f.formErr.ClearField(name)
	}
	return nil
}

// SelectRole sets the role field, refusing roles the session may not grant.
func (f *RegisterFlow) SelectRole(ctx context.Context, role domain.Role) error {
	if !slices.Contains(f.RoleOptions(ctx), role) {
		return domain.ErrRoleNotOffered.WithDetails(role.String())
	}
	return f.SetField(domain.FieldRole, role.String())
}

// RoleOptions returns the roles the current session may assign. Only an
// admin session may create admins. The server enforces this independently.
func (f *RegisterFlow) RoleOptions(ctx context.Context) []domain.Role {
	sess, ok := f.sessions.Load(ctx)
	if ok && sess.IsAdmin() {
		return []domain.Role{domain.RoleUser, domain.RoleAdmin}
	}
	return []domain.Role{domain.RoleUser}
}

// Form returns a copy of the current form values.
func (f *RegisterFlow) Form() domain.RegistrationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Error returns a copy of the current form error.
func (f *RegisterFlow) Error() domain.FormError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.formErr.Clone()
}

// State returns the submission state.
func (f *RegisterFlow) State() SubmitState {
	return f.guard.current()
}

// Submit sends the form. On success the form is reset and the navigation
// to the user listing carries the created user. On failure the form error
// is replaced by the classified error's message and fields.
func (f *RegisterFlow) Submit(ctx context.Context) (domain.Navigation, error) {
	end, err := f.guard.begin()
	if err != nil {
		f.metrics.SubmitRejected("register")
		return domain.Navigation{}, err
	}
	defer end()

	f.mu.Lock()
	f.formErr = domain.NewFormError()
	req := f.form
	f.mu.Unlock()

	sess, ok := f.sessions.Load(ctx)
	if !ok {
		return domain.Navigation{}, domain.ErrUnauthenticated
	}

	if ae := validateForm(req); ae != nil {
		f.fail(ae)
		return domain.Navigation{}, ae
	}

	user, err := f.client.Register(ctx, req, sess.Token)
	if err != nil {
		ae := classify(err, domain.MsgRegisterFailed)
		f.fail(ae)
		f.logger.Warn("registration failed",
			"username", req.Username, "kind", ae.Kind, "status", ae.Status, "fields", ae.Fields)
		return domain.Navigation{}, ae
	}

	f.mu.Lock()
	f.form = domain.RegistrationRequest{Role: domain.RoleUser}
	f.mu.Unlock()

	f.logger.Info("user created", "username", user.Username, "role", user.Role, "by", sess.User.Username)
	return domain.Navigation{
		Route:   domain.RouteUsers,
		Success: fmt.Sprintf("user %s created successfully", user.Username),
		NewUser: &user,
	}, nil
}

func (f *RegisterFlow) fail(ae *domain.AuthError) {
	f.mu.Lock()
	f.formErr = domain.FormErrorFrom(ae)
	f.mu.Unlock()
}
