package service

import (
	"context"
	"sync"
	"testing"

	"github.com/yndnr/authclient/internal/core/domain"
	"github.com/yndnr/authclient/internal/storage"
	"github.com/yndnr/authclient/internal/telemetry/logger"
)

const testOrigin = "http://api.test"

// fakeAuth is a scriptable Authenticator that counts calls.
type fakeAuth struct {
	mu    sync.Mutex
	calls map[string]int

	login    func(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	register func(ctx context.Context, req domain.RegistrationRequest, bearer string) (domain.User, error)
	list     func(ctx context.Context, bearer string) ([]domain.User, error)
	delete   func(ctx context.Context, bearer string, id int64) error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{calls: make(map[string]int)}
}

func (f *fakeAuth) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAuth) inc(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeAuth) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	f.inc("login")
	return f.login(ctx, creds)
}

func (f *fakeAuth) Register(ctx context.Context, req domain.RegistrationRequest, bearer string) (domain.User, error) {
	f.inc("register")
	return f.register(ctx, req, bearer)
}

func (f *fakeAuth) ListUsers(ctx context.Context, bearer string) ([]domain.User, error) {
	f.inc("list")
	return f.list(ctx, bearer)
}

func (f *fakeAuth) DeleteUser(ctx context.Context, bearer string, id int64) error {
	f.inc("delete")
	return f.delete(ctx, bearer, id)
}

func newTestStore(t *testing.T) (*SessionStore, *storage.MemoryEngine) {
	t.Helper()
	engine := storage.NewMemoryEngine()
	t.Cleanup(func() { engine.Close() })
	return NewSessionStore(engine, SessionStoreConfig{Origin: testOrigin, Logger: logger.Nop()}), engine
}

func saveSession(t *testing.T, store *SessionStore, token, username string, role domain.Role) domain.Session {
	t.Helper()
	sess := domain.Session{Token: token, User: domain.User{Username: username, Role: role}}
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return sess
}

func quiet() FlowOption {
	return WithLogger(logger.Nop())
}
