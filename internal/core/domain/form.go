// Package domain defines the core domain models for authclient.
package domain

import (
	"maps"
	"sort"
)

// FormError is the displayable error state of a form: a global message
// plus per-field messages.
type FormError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// NewFormError returns an empty FormError.
func NewFormError() FormError {
	return FormError{Fields: map[string]string{}}
}

// FormErrorFrom builds the FormError that replaces a form's error state
// after a failed submission.
func FormErrorFrom(err *AuthError) FormError {
	fe := NewFormError()
	if err == nil {
		return fe
	}
	fe.Message = err.Message
	maps.Copy(fe.Fields, err.Fields)
	return fe
}

// Empty reports whether there is nothing to display.
func (f FormError) Empty() bool {
	return f.Message == "" && len(f.Fields) == 0
}

// Field returns the message attached to field, if any.
func (f FormError) Field(name string) (string, bool) {
	msg, ok := f.Fields[name]
	return msg, ok
}

// ClearField returns a copy of f without the error for field.
// The global message is untouched.
func (f FormError) ClearField(name string) FormError {
	out := FormError{Message: f.Message, Fields: make(map[string]string, len(f.Fields))}
	for k, v := range f.Fields {
		if k != name {
			out.Fields[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of f.
func (f FormError) Clone() FormError {
	out := FormError{Message: f.Message, Fields: make(map[string]string, len(f.Fields))}
	maps.Copy(out.Fields, f.Fields)
	return out
}

// FieldNames returns the names of fields carrying an error, sorted.
func (f FormError) FieldNames() []string {
	names := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
