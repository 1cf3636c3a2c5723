package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yndnr/authclient/internal/core/domain"
)

func TestLoginFlow_SuccessSavesSessionAndRoutesByRole(t *testing.T) {
	tests := []struct {
		name      string
		role      domain.Role
		wantRoute domain.Route
	}{
		{"admin", domain.RoleAdmin, domain.RouteAdmin},
		{"user", domain.RoleUser, domain.RouteClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore(t)
			auth := newFakeAuth()
			returned := domain.Session{Token: "t1", User: domain.User{Username: "alice", Role: tt.role}}
			auth.login = func(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
				if creds.Username != "alice" || creds.Password != "pw" {
					t.Errorf("Login() got creds %+v", creds)
				}
				return returned, nil
			}

			flow := NewLoginFlow(auth, store, quiet())
			nav, err := flow.Submit(context.Background(), domain.Credentials{Username: "alice", Password: "pw"})
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if nav.Route != tt.wantRoute {
				t.Errorf("Route = %q, want %q", nav.Route, tt.wantRoute)
			}
			if nav.User == nil || *nav.User != returned.User {
				t.Errorf("User = %+v, want %+v", nav.User, returned.User)
			}

			got, ok := store.Load(context.Background())
			if !ok || got != returned {
				t.Errorf("Load() = %+v, %v, want %+v", got, ok, returned)
			}
			if !flow.Error().Empty() {
				t.Errorf("Error() = %+v, want empty", flow.Error())
			}
			if flow.State() != StateIdle {
				t.Errorf("State() = %v, want idle", flow.State())
			}
		})
	}
}

func TestLoginFlow_FailureLeavesSessionUnchanged(t *testing.T) {
	failures := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"rejected", domain.Rejected(401, "bad credentials", domain.MsgLoginFailed), "bad credentials"},
		{"network", domain.NetworkUnavailable(errors.New("refused")), domain.MsgNetworkUnavailable},
		{"unclassified", errors.New("boom"), domain.MsgLoginFailed},
	}

	for _, tt := range failures {
		for _, populated := range []bool{false, true} {
			name := tt.name + "/empty"
			if populated {
				name = tt.name + "/populated"
			}
			t.Run(name, func(t *testing.T) {
				store, _ := newTestStore(t)
				ctx := context.Background()

				var before domain.Session
				if populated {
					before = saveSession(t, store, "old", "bob", domain.RoleUser)
				}

				auth := newFakeAuth()
				auth.login = func(context.Context, domain.Credentials) (domain.Session, error) {
					return domain.Session{}, tt.err
				}

				flow := NewLoginFlow(auth, store, quiet())
				_, err := flow.Submit(ctx, domain.Credentials{Username: "alice", Password: "pw"})

				ae, ok := domain.AsAuthError(err)
				if !ok {
					t.Fatalf("Submit() error = %v, want *AuthError", err)
				}
				if ae.Message != tt.wantMsg {
					t.Errorf("Message = %q, want %q", ae.Message, tt.wantMsg)
				}
				if flow.Error().Message != tt.wantMsg {
					t.Errorf("Error().Message = %q, want %q", flow.Error().Message, tt.wantMsg)
				}

				got, ok := store.Load(ctx)
				if ok != populated || got != before {
					t.Errorf("Load() = %+v, %v, want %+v, %v", got, ok, before, populated)
				}
				if flow.State() != StateIdle {
					t.Errorf("State() = %v, want idle", flow.State())
				}
			})
		}
	}
}

func TestLoginFlow_RequiredFieldsSkipRequest(t *testing.T) {
	store, _ := newTestStore(t)
	auth := newFakeAuth()
	flow := NewLoginFlow(auth, store, quiet())

	_, err := flow.Submit(context.Background(), domain.Credentials{Username: "alice"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Submit() error = %v, want validation", err)
	}
	if msg, _ := flow.Error().Field(domain.FieldPassword); msg != domain.MsgFieldRequired {
		t.Errorf("password error = %q, want %q", msg, domain.MsgFieldRequired)
	}
	if _, ok := flow.Error().Field(domain.FieldUsername); ok {
		t.Error("username should not carry an error")
	}
	if auth.count("login") != 0 {
		t.Errorf("Login called %d times, want 0", auth.count("login"))
	}
}

func TestLoginFlow_ErrorResetOnNextSubmit(t *testing.T) {
	store, _ := newTestStore(t)
	auth := newFakeAuth()
	fail := true
	auth.login = func(context.Context, domain.Credentials) (domain.Session, error) {
		if fail {
			return domain.Session{}, domain.Rejected(401, "nope", domain.MsgLoginFailed)
		}
		return domain.Session{Token: "t", User: domain.User{Username: "alice", Role: domain.RoleUser}}, nil
	}

	flow := NewLoginFlow(auth, store, quiet())
	creds := domain.Credentials{Username: "alice", Password: "pw"}
	flow.Submit(context.Background(), creds)
	if flow.Error().Empty() {
		t.Fatal("expected an error after the failed submit")
	}

	fail = false
	if _, err := flow.Submit(context.Background(), creds); err != nil {
		t.Fatal(err)
	}
	if !flow.Error().Empty() {
		t.Errorf("Error() = %+v, want empty after success", flow.Error())
	}
}

func TestLoginFlow_RejectsConcurrentSubmit(t *testing.T) {
	store, _ := newTestStore(t)
	auth := newFakeAuth()
	started := make(chan struct{})
	release := make(chan struct{})
	auth.login = func(context.Context, domain.Credentials) (domain.Session, error) {
		close(started)
		<-release
		return domain.Session{Token: "t", User: domain.User{Username: "alice", Role: domain.RoleUser}}, nil
	}

	flow := NewLoginFlow(auth, store, quiet())
	creds := domain.Credentials{Username: "alice", Password: "pw"}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := flow.Submit(context.Background(), creds); err != nil {
			t.Errorf("first Submit() error = %v", err)
		}
	}()

	<-started
	if flow.State() != StateSubmitting {
		t.Errorf("State() = %v, want submitting", flow.State())
	}
	if _, err := flow.Submit(context.Background(), creds); !errors.Is(err, domain.ErrSubmitInProgress) {
		t.Errorf("second Submit() error = %v, want ErrSubmitInProgress", err)
	}

	close(release)
	wg.Wait()

	if auth.count("login") != 1 {
		t.Errorf("Login called %d times, want 1", auth.count("login"))
	}
}

func TestLoginFlow_Logout(t *testing.T) {
	store, _ := newTestStore(t)
	saveSession(t, store, "t1", "alice", domain.RoleUser)

	flow := NewLoginFlow(newFakeAuth(), store, quiet())
	nav, err := flow.Logout(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if nav.Route != domain.RouteEntry {
		t.Errorf("Route = %q, want %q", nav.Route, domain.RouteEntry)
	}
	if store.IsAuthenticated(context.Background()) {
		t.Error("session should be cleared after Logout")
	}

	// Logging out twice is fine.
	if _, err := flow.Logout(context.Background()); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
}
