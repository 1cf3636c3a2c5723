package command

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/yndnr/authclient/internal/core/domain"
)

func TestRegister_NotLoggedIn(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("register", "-u", "carol", "-p", "pw")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("error = %v", err)
	}
}

func TestRegister_AsAdmin(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	out := h.mustRun("register", "--no-list", "-u", "carol", "-p", "pw", "-r", "admin")
	if out != "user carol created successfully\n-> /users\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRegister_AsAdminShowsListing(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	out := h.mustRun("register", "-u", "carol", "-p", "pw")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 5 {
		t.Fatalf("output too short:\n%s", out)
	}
	if lines[0] != "user carol created successfully" || lines[1] != "-> /users" || lines[2] != "" {
		t.Errorf("unexpected head:\n%s", out)
	}
	if !strings.Contains(out, "alice") || !strings.Contains(out, "bob") {
		t.Errorf("listing missing users:\n%s", out)
	}
}

func TestRegister_Failures(t *testing.T) {
	tests := []struct {
		name    string
		as      string
		args    []string
		wantErr error
		printed string
	}{
		{
			name:    "role not offered to user session",
			as:      "bob",
			args:    []string{"-u", "carol", "-p", "pw", "-r", "admin"},
			wantErr: domain.ErrRoleNotOffered,
			printed: "error: role is not available for this session: admin\n",
		},
		{
			name:    "forced admin role refused by server",
			as:      "bob",
			args:    []string{"--force-role", "-u", "carol", "-p", "pw", "-r", "admin"},
			wantErr: domain.ErrForbidden,
			printed: "error: admin privileges required\n",
		},
		{
			name:    "username taken",
			as:      "alice",
			args:    []string{"-u", "bob", "-p", "pw"},
			wantErr: domain.ErrConflict,
			printed: "error: Username already exists\n  username: this username is already taken\n",
		},
		{
			name:    "missing password",
			as:      "alice",
			args:    []string{"-u", "carol"},
			wantErr: domain.ErrValidation,
			printed: "error: please fill in the required fields\n  password: this field is required\n",
		},
		{
			name:    "unknown role",
			as:      "alice",
			args:    []string{"--force-role", "-u", "carol", "-p", "pw", "-r", "root"},
			wantErr: domain.ErrValidation,
			printed: "error: invalid request\n  role: role must be user or admin\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.login(tt.as)

			_, _, err := h.run(append([]string{"register", "--no-list"}, tt.args...)...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got := printed(err); got != tt.printed {
				t.Errorf("printed = %q, want %q", got, tt.printed)
			}
		})
	}
}

func TestRegister_ValidationSkipsServer(t *testing.T) {
	h := newHarness(t)
	h.login("alice")
	calls := 0
	h.api.handle("/register", func(w http.ResponseWriter, r *http.Request) {
		calls++
		jsonResponse(w, http.StatusCreated, map[string]any{"user": bob})
	})

	if _, _, err := h.run("register", "--no-list", "-p", "pw"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 0 {
		t.Errorf("server called %d times", calls)
	}
}

func TestRegisterRoles(t *testing.T) {
	tests := []struct {
		as   string
		want string
	}{
		{"alice", "ROLE\nuser\nadmin\n"},
		{"bob", "ROLE\nuser\n"},
	}

	for _, tt := range tests {
		t.Run(tt.as, func(t *testing.T) {
			h := newHarness(t)
			h.login(tt.as)

			out := h.mustRun("register", "roles")
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}
