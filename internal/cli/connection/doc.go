// Package connection talks to the remote authentication API.
//
//   - http.go: JSON-over-HTTP transport with request IDs and bearer auth
//   - auth.go: AuthClient, which turns HTTP outcomes into typed results or
//     classified *domain.AuthError values
//
// Classification happens here and nowhere else. Callers never look at
// status codes.
package connection
