// Package logger provides structured logging for authclient.
//
// The package exposes a small Logger interface backed by zerolog:
//
//   - logger.go: configuration, levels, default logger
//   - context.go: context-aware logging with request IDs
//   - redact.go: sensitive data redaction (passwords, bearer tokens)
//
// Logs go to stderr so they never mix with command output on stdout.
package logger
