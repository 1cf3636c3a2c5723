package repl

import (
	"reflect"
	"testing"
)

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter("users list", "users delete", "login", "logout", "config get")

	tests := []struct {
		prefix string
		want   []string
	}{
		{"users ", []string{"users delete", "users list"}},
		{"log", []string{"login", "logout"}},
		{"h", []string{"history"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestCompleter_Known(t *testing.T) {
	c := NewCompleter("users list", "login")

	for _, word := range []string{"users", "login", "exit", "quit", "history"} {
		if !c.Known(word) {
			t.Errorf("Known(%q) = false", word)
		}
	}
	for _, word := range []string{"list", "user", ""} {
		if c.Known(word) {
			t.Errorf("Known(%q) = true", word)
		}
	}
}
