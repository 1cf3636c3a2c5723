package service

import (
	"context"
	"sort"

	"github.com/yndnr/authclient/internal/core/domain"
)

// UsersFlow lists and deletes accounts. Both need a session; the server
// decides whether the session may see them.
type UsersFlow struct {
	client   Authenticator
	sessions Sessions
	flowDeps

	guard submitGuard
}

// NewUsersFlow creates a UsersFlow.
func NewUsersFlow(client Authenticator, sessions Sessions, opts ...FlowOption) *UsersFlow {
	return &UsersFlow{
		client:   client,
		sessions: sessions,
		flowDeps: newFlowDeps("users", opts),
	}
}

// List returns all users ordered by ID, then username.
func (f *UsersFlow) List(ctx context.Context) ([]domain.User, error) {
	sess, ok := f.sessions.Load(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	users, err := f.client.ListUsers(ctx, sess.Token)
	if err != nil {
		ae := classify(err, domain.MsgListUsersFailed)
		f.logger.Warn("list users failed", "kind", ae.Kind, "status", ae.Status)
		return nil, ae
	}

	sort.SliceStable(users, func(i, j int) bool {
		if users[i].ID != users[j].ID {
			return users[i].ID < users[j].ID
		}
		return users[i].Username < users[j].Username
	})
	return users, nil
}

// Delete removes the user with the given ID.
func (f *UsersFlow) Delete(ctx context.Context, id int64) error {
	end, err := f.guard.begin()
	if err != nil {
		f.metrics.SubmitRejected("users")
		return err
	}
	defer end()

	sess, ok := f.sessions.Load(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}

	if err := f.client.DeleteUser(ctx, sess.Token, id); err != nil {
		ae := classify(err, domain.MsgDeleteUserFailed)
		f.logger.Warn("delete user failed", "id", id, "kind", ae.Kind, "status", ae.Status)
		return ae
	}

	f.logger.Info("user deleted", "id", id, "by", sess.User.Username)
	return nil
}
