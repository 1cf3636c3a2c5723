// Package main provides the entry point for authclient.
//
// authclient is the command-line client for the authentication API:
//
//   - Sign in and out, and show the current identity
//   - Register accounts (admins may create admins)
//   - List and delete users
//   - Configuration management
//
// Usage:
//
//	authclient [global flags] command [flags]
//	authclient login -u alice
//	authclient -o json users list
//	authclient repl
//
// The session is stored per server origin and survives restarts.
package main
