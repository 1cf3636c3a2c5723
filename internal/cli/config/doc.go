// Package config holds the authclient configuration.
//
//   - spec.go: CLIConfig, defaults and validation
//   - loader.go: loading (defaults, file, AUTHCLIENT_* env, flags) and saving
//   - keys.go: get/set by dotted key for "config get" and "config set"
//   - watch.go: reload on file change, used by the REPL
//
// The file lives at ~/.authclient/config.yaml and is written with mode 0600
// because it may hold a Redis password.
package config
