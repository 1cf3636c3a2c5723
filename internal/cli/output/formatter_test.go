package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yndnr/authclient/internal/core/domain"
)

type testUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	secret   string
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{" JSON ", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("expected YAMLFormatter")
	}
	if _, ok := NewFormatter("unknown").(*TableFormatter); !ok {
		t.Error("expected TableFormatter as the default")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, testUser{ID: 7, Username: "alice", Role: "admin"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"id": 7`, `"username": "alice"`, `"role": "admin"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() = %s, missing %s", out, want)
		}
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	data := []map[string]any{
		{"username": "alice", "role": "admin"},
		{"username": "bob", "role": "user"},
	}

	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "- role: admin\n  username: alice\n- role: user\n  username: bob\n"
	if buf.String() != want {
		t.Errorf("Format() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, domain.FormError{
		Message: "registration failed",
		Fields: map[string]string{
			"username": "this username is already taken",
			"password": "this field is required",
		},
	})

	want := "error: registration failed\n" +
		"  password: this field is required\n" +
		"  username: this username is already taken\n"
	if buf.String() != want {
		t.Errorf("PrintError() =\n%q\nwant\n%q", buf.String(), want)
	}

	buf.Reset()
	PrintError(&buf, domain.FormError{Message: "network error or server unavailable"})
	if buf.String() != "error: network error or server unavailable\n" {
		t.Errorf("PrintError(no fields) = %q", buf.String())
	}
}
