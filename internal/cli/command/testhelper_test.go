package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/authclient/internal/core/domain"
	"github.com/yndnr/authclient/internal/storage"
)

// mockServer creates a test HTTP server with custom handlers.
type mockServer struct {
	*httptest.Server
	handlers map[string]http.HandlerFunc
}

func newMockServer(t *testing.T) *mockServer {
	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Find handler by path prefix match
		for pattern, handler := range m.handlers {
			if strings.HasPrefix(r.URL.Path, pattern) {
				handler(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.handlers[pattern] = handler
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Accounts known to the fake API.
var (
	alice = domain.User{ID: 1, Username: "alice", Role: domain.RoleAdmin}
	bob   = domain.User{ID: 2, Username: "bob", Role: domain.RoleUser}
)

const (
	adminToken = "tok-admin"
	userToken  = "tok-user"
)

// newAuthAPI serves login, register and the user listing the way the
// authentication API does.
func newAuthAPI(t *testing.T) *mockServer {
	m := newMockServer(t)

	m.handle("/login", func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		switch {
		case creds.Username == "alice" && creds.Password == "pw":
			jsonResponse(w, http.StatusOK, map[string]any{"token": adminToken, "user": alice})
		case creds.Username == "bob" && creds.Password == "pw":
			jsonResponse(w, http.StatusOK, map[string]any{"token": userToken, "user": bob})
		default:
			jsonResponse(w, http.StatusUnauthorized, map[string]string{"msg": "Invalid credentials"})
		}
	})

	m.handle("/register", func(w http.ResponseWriter, r *http.Request) {
		var req domain.RegistrationRequest
		json.NewDecoder(r.Body).Decode(&req)
		admin := r.Header.Get("Authorization") == "Bearer "+adminToken
		switch {
		case req.Role == domain.RoleAdmin && !admin:
			jsonResponse(w, http.StatusForbidden, map[string]string{"msg": "Forbidden"})
		case req.Username == "alice" || req.Username == "bob":
			jsonResponse(w, http.StatusConflict, map[string]string{"msg": "Username already exists"})
		default:
			jsonResponse(w, http.StatusCreated, map[string]any{
				"msg":  "User created",
				"user": domain.User{ID: 3, Username: req.Username, Role: req.Role},
			})
		}
	})

	m.handle("/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+adminToken {
			jsonResponse(w, http.StatusForbidden, map[string]string{"msg": "Forbidden"})
			return
		}
		switch {
		case r.Method == http.MethodGet:
			jsonResponse(w, http.StatusOK, []domain.User{bob, alice})
		case r.Method == http.MethodDelete && r.URL.Path == "/users/2":
			jsonResponse(w, http.StatusOK, map[string]string{"msg": "User deleted"})
		default:
			jsonResponse(w, http.StatusNotFound, map[string]string{"msg": "User not found"})
		}
	})

	return m
}

// scriptedPrompter answers prompts from a fixed list.
type scriptedPrompter struct {
	interactive bool
	answers     []string
	asked       []string
}

func (p *scriptedPrompter) Interactive() bool { return p.interactive }

func (p *scriptedPrompter) Line(label string) (string, error) {
	return p.next(label)
}

func (p *scriptedPrompter) Secret(label string) (string, error) {
	return p.next(label)
}

func (p *scriptedPrompter) next(label string) (string, error) {
	if !p.interactive {
		return "", ErrNotInteractive
	}
	p.asked = append(p.asked, label)
	if len(p.answers) == 0 {
		return "", nil
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

// harness runs the app against one fake API and one session store.
type harness struct {
	t          *testing.T
	api        *mockServer
	kv         storage.KVEngine
	prompt     *scriptedPrompter
	configPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	api := newAuthAPI(t)
	path := filepath.Join(home, "config.yaml")
	writeConfig(t, path, "server: "+api.URL+"\n"+
		"session:\n  backend: memory\n  encrypt: false\n")

	return &harness{
		t:          t,
		api:        api,
		kv:         storage.NewMemoryEngine(),
		prompt:     &scriptedPrompter{},
		configPath: path,
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// run executes one command line and returns stdout, stderr and the error
// the caller would print.
func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	app := App(
		WithIO(strings.NewReader(""), &out, &errOut),
		WithPrompter(h.prompt),
		WithStorage(h.kv),
	)
	err := app.Run(append([]string{"authclient", "--config", h.configPath}, args...))
	return out.String(), errOut.String(), err
}

// mustRun is run that fails the test on error.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("%v: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

// login signs in as alice (admin) or bob (user).
func (h *harness) login(username string) {
	h.t.Helper()
	h.mustRun("login", "-u", username, "-p", "pw")
}

func printed(err error) string {
	var buf bytes.Buffer
	PrintError(&buf, err)
	return buf.String()
}
