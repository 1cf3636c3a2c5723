// Package command defines the authclient command tree.
//
// It uses urfave/cli/v2 for parsing and runs the same tree in one-shot
// mode and inside the REPL.
//
//   - root.go: App, global flags, error printing
//   - runtime.go: lazy wiring of config, logger, storage, session store and
//     API client
//   - auth.go: login, logout, whoami
//   - register.go: register, register roles
//   - users.go: users list, users delete
//   - config.go: config show, get, set, path, validate, keys
//   - interactive.go: repl
//   - version.go: version
//   - prompt.go: terminal prompts
package command
