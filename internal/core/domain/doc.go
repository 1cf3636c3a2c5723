// Package domain defines the core domain models for authclient.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - User, Role: the identity returned by the authentication API
//   - Session: the (token, user) pair persisted between invocations
//   - Credentials, RegistrationRequest: transient form payloads
//   - FormError: displayable error state of a form
//   - AuthError: the closed set of classified API failures
//   - Route, Navigation: logical navigation targets reported by flows
package domain
