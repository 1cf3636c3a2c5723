package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/authclient/internal/core/domain"
	"github.com/yndnr/authclient/internal/storage"
	"github.com/yndnr/authclient/internal/telemetry/logger"
	"github.com/yndnr/authclient/internal/telemetry/metric"
	"github.com/yndnr/authclient/pkg/crypto/adaptive"
)

func TestSessionStore_SaveLoad(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if store.IsAuthenticated(ctx) {
		t.Fatal("empty store should not be authenticated")
	}

	want := saveSession(t, store, "t1", "alice", domain.RoleAdmin)

	got, ok := store.Load(ctx)
	if !ok {
		t.Fatal("Load() reported absent after Save")
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	role, ok := store.CurrentRole(ctx)
	if !ok || role != domain.RoleAdmin {
		t.Errorf("CurrentRole() = %q, %v, want admin, true", role, ok)
	}
}

func TestSessionStore_SaveOverwrites(t *testing.T) {
	store, _ := newTestStore(t)

	saveSession(t, store, "t1", "alice", domain.RoleAdmin)
	want := saveSession(t, store, "t2", "bob", domain.RoleUser)

	got, _ := store.Load(context.Background())
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestSessionStore_SaveIncomplete(t *testing.T) {
	store, engine := newTestStore(t)

	tests := []struct {
		name string
		sess domain.Session
	}{
		{"no token", domain.Session{User: domain.User{Username: "alice", Role: domain.RoleUser}}},
		{"no user", domain.Session{Token: "t1"}},
		{"no role", domain.Session{Token: "t1", User: domain.User{Username: "alice"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Save(context.Background(), tt.sess); err != ErrIncompleteSession {
				t.Errorf("Save() error = %v, want ErrIncompleteSession", err)
			}
		})
	}
	if engine.Len() != 0 {
		t.Errorf("engine holds %d keys after rejected saves, want 0", engine.Len())
	}
}

func TestSessionStore_LoadMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token []byte
		user  []byte
	}{
		{"token only", []byte("\x00t1"), nil},
		{"user only", nil, []byte(`{"username":"alice","role":"user"}`)},
		{"user not json", []byte("\x00t1"), []byte("not json")},
		{"user is array", []byte("\x00t1"), []byte(`["alice"]`)},
		{"user is null", []byte("\x00t1"), []byte(`null`)},
		{"username wrong type", []byte("\x00t1"), []byte(`{"username":42,"role":"user"}`)},
		{"unknown role", []byte("\x00t1"), []byte(`{"username":"alice","role":"root"}`)},
		{"empty token", []byte("\x00"), []byte(`{"username":"alice","role":"user"}`)},
		{"unknown token tag", []byte("\x07t1"), []byte(`{"username":"alice","role":"user"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, engine := newTestStore(t)
			ctx := context.Background()

			b := storage.NewBatch()
			if tt.token != nil {
				b.Set(store.tokenKey, tt.token)
			}
			if tt.user != nil {
				b.Set(store.userKey, tt.user)
			}
			if err := engine.Apply(ctx, b); err != nil {
				t.Fatal(err)
			}

			if _, ok := store.Load(ctx); ok {
				t.Error("Load() should report absent")
			}
			if store.IsAuthenticated(ctx) {
				t.Error("IsAuthenticated() should be false")
			}
		})
	}
}

func TestSessionStore_ClearIdempotent(t *testing.T) {
	store, engine := newTestStore(t)
	ctx := context.Background()

	saveSession(t, store, "t1", "alice", domain.RoleUser)

	for i := 0; i < 2; i++ {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear() #%d error = %v", i+1, err)
		}
		if store.IsAuthenticated(ctx) {
			t.Errorf("IsAuthenticated() after Clear #%d = true", i+1)
		}
	}
	if engine.Len() != 0 {
		t.Errorf("engine holds %d keys after Clear, want 0", engine.Len())
	}
}

func TestSessionStore_ReadErrorIsAbsent(t *testing.T) {
	store, engine := newTestStore(t)
	saveSession(t, store, "t1", "alice", domain.RoleUser)
	engine.Close()

	if _, ok := store.Load(context.Background()); ok {
		t.Error("Load() on a failing engine should report absent")
	}
	if err := store.Clear(context.Background()); err == nil {
		t.Error("Clear() on a failing engine should return an error")
	}
}

func TestSessionStore_OriginScoped(t *testing.T) {
	engine := storage.NewMemoryEngine()
	a := NewSessionStore(engine, SessionStoreConfig{Origin: "http://a.test", Logger: logger.Nop()})
	b := NewSessionStore(engine, SessionStoreConfig{Origin: "http://b.test", Logger: logger.Nop()})

	saveSession(t, a, "t1", "alice", domain.RoleUser)

	if b.IsAuthenticated(context.Background()) {
		t.Error("session saved for one origin is visible to another")
	}
}

func TestSessionStore_Sealed(t *testing.T) {
	engine := storage.NewMemoryEngine()
	ctx := context.Background()

	sealer, err := adaptive.New(make([]byte, adaptive.KeySize))
	if err != nil {
		t.Fatal(err)
	}
	reg := metric.NewRegistry()
	sealed := NewSessionStore(engine, SessionStoreConfig{
		Origin: testOrigin, Sealer: sealer, Metrics: reg, Logger: logger.Nop(),
	})

	want := saveSession(t, sealed, "secret-token", "alice", domain.RoleUser)

	vals, err := engine.GetMany(ctx, sealed.tokenKey)
	if err != nil {
		t.Fatal(err)
	}
	raw := vals[sealed.tokenKey]
	if len(raw) == 0 {
		t.Fatal("token not stored")
	}
	if raw[0] != tokenSealed || string(raw[1:]) == "secret-token" {
		t.Error("token should be sealed at rest")
	}

	got, ok := sealed.Load(ctx)
	if !ok || got != want {
		t.Errorf("Load() = %+v, %v, want %+v", got, ok, want)
	}

	plain := NewSessionStore(engine, SessionStoreConfig{Origin: testOrigin, Logger: logger.Nop()})
	if plain.IsAuthenticated(ctx) {
		t.Error("sealed token should read as absent without a sealer")
	}

	if v := testutil.ToFloat64(reg.SessionWrites.WithLabelValues("save")); v != 1 {
		t.Errorf("session saves = %v, want 1", v)
	}
}

func TestOrigin(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"http://localhost:5000", "http://localhost:5000", false},
		{"https://API.example.com/v1/", "https://api.example.com", false},
		{"  http://h:1  ", "http://h:1", false},
		{"ftp://h", "", true},
		{"localhost:5000", "", true},
		{"http://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Origin(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Origin(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Origin(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
