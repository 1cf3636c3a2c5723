package repl

import (
	"sort"
	"strings"
)

// Completer suggests command names.
type Completer struct {
	commands []string
	roots    map[string]struct{}
}

// builtins are handled by the REPL itself.
var builtins = []string{"exit", "quit", "history"}

// NewCompleter creates a Completer for the given command paths
// ("users list", "config get", ...).
func NewCompleter(commands ...string) *Completer {
	c := &Completer{roots: make(map[string]struct{})}
	for _, cmd := range append(append([]string{}, commands...), builtins...) {
		c.commands = append(c.commands, cmd)
		root, _, _ := strings.Cut(cmd, " ")
		c.roots[root] = struct{}{}
	}
	sort.Strings(c.commands)
	return c
}

// Known reports whether word names a top-level command.
func (c *Completer) Known(word string) bool {
	_, ok := c.roots[word]
	return ok
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
