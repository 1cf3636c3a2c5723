// Package service implements the client-side authentication flows.
//
// This package contains:
//
//   - SessionStore: durable (token, user) pair kept in a storage.KVEngine
//   - LoginFlow: credential submission, session save, logout
//   - RegisterFlow: account creation with per-field error state
//   - UsersFlow: user listing and deletion for administrators
//
// Flows talk to the remote API through the Authenticator interface and to
// persistence through the Sessions interface, so both can be faked in
// tests. Every flow instance rejects a second submission while one is
// outstanding instead of racing two requests.
package service
