// Package domain defines the core domain models for authclient.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a local (non-API) error with a structured code.
type DomainError struct {
	Code    string // Error code (e.g., "AC-SESS-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

var (
	// ErrUnauthenticated indicates an operation needs an active session.
	ErrUnauthenticated = NewDomainError("AC-SESS-4010", "you are not logged in")

	// ErrSubmitInProgress indicates a flow is already waiting for a response.
	ErrSubmitInProgress = NewDomainError("AC-FLOW-4090", "a submission is already in progress")

	// ErrRoleNotOffered indicates the selected role is not available to
	// the current session.
	ErrRoleNotOffered = NewDomainError("AC-FORM-4030", "role is not available for this session")
)

// ErrorKind identifies an AuthError variant. The set is closed.
type ErrorKind int

const (
	// KindNetworkUnavailable: no response reached the client.
	KindNetworkUnavailable ErrorKind = iota + 1
	// KindRejected: generic non-2xx response.
	KindRejected
	// KindConflict: 409, the username is taken.
	KindConflict
	// KindValidation: 400, or client-side required-field failure.
	KindValidation
	// KindForbidden: 403, admin privileges required.
	KindForbidden
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindRejected:
		return "rejected"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Display messages. Every AuthError carries a non-empty Message.
const (
	MsgNetworkUnavailable = "network error or server unavailable"
	MsgLoginFailed        = "login failed"
	MsgRegisterFailed     = "registration failed"
	MsgUsernameTaken      = "this username is already taken"
	MsgUsernameUnavail    = "username unavailable"
	MsgFieldRequired      = "this field is required"
	MsgInvalidRequest     = "invalid request"
	MsgAdminRequired      = "admin privileges required"
	MsgListUsersFailed    = "could not load users"
	MsgDeleteUserFailed   = "could not delete user"
	MsgMissingFields      = "please fill in the required fields"
	MsgRoleInvalid        = "role must be user or admin"
)

// AuthError is a classified failure of an authentication API call.
//
// Classification happens once, at the HTTP client boundary; flows only
// project an AuthError onto form state.
type AuthError struct {
	Kind    ErrorKind
	Message string
	// Fields maps form field names to messages. Never nil.
	Fields map[string]string
	// Status is the HTTP status code, zero for NetworkUnavailable.
	Status int
	Cause  error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// Is matches another AuthError of the same Kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newAuthError(kind ErrorKind, status int, message string, fields map[string]string) *AuthError {
	if fields == nil {
		fields = map[string]string{}
	}
	return &AuthError{Kind: kind, Status: status, Message: message, Fields: fields}
}

// NetworkUnavailable builds the transport-failure variant.
func NetworkUnavailable(cause error) *AuthError {
	e := newAuthError(KindNetworkUnavailable, 0, MsgNetworkUnavailable, nil)
	e.Cause = cause
	return e
}

// Rejected builds the generic non-2xx variant. fallback is used when the
// server did not supply a message.
func Rejected(status int, message, fallback string) *AuthError {
	if message == "" {
		message = fallback
	}
	return newAuthError(KindRejected, status, message, nil)
}

// Conflict builds the 409 variant; the username field is always implicated.
func Conflict(message string) *AuthError {
	if message == "" {
		message = MsgUsernameUnavail
	}
	return newAuthError(KindConflict, 409, message, map[string]string{FieldUsername: MsgUsernameTaken})
}

// Validation builds the 400 variant, marking every missing field required.
func Validation(status int, message string, missing []string) *AuthError {
	if message == "" {
		message = MsgInvalidRequest
	}
	fields := make(map[string]string, len(missing))
	for _, f := range missing {
		fields[f] = MsgFieldRequired
	}
	return newAuthError(KindValidation, status, message, fields)
}

// Forbidden builds the 403 variant. The message is synthesized locally.
func Forbidden() *AuthError {
	return newAuthError(KindForbidden, 403, MsgAdminRequired, nil)
}

// Sentinels for errors.Is matching by kind.
var (
	ErrNetworkUnavailable = &AuthError{Kind: KindNetworkUnavailable}
	ErrRejected           = &AuthError{Kind: KindRejected}
	ErrConflict           = &AuthError{Kind: KindConflict}
	ErrValidation         = &AuthError{Kind: KindValidation}
	ErrForbidden          = &AuthError{Kind: KindForbidden}
)

// AsAuthError extracts an AuthError from err.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
