package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the HTTP boundary can map it to a response
// without inspecting messages.
type Kind string

const (
	KindUpstream       Kind = "upstream"
	KindNotLinked      Kind = "not_linked"
	KindAuth           Kind = "auth"
	KindInvalidRequest Kind = "invalid_request"
	KindInternal       Kind = "internal"
)

// Common error values
var (
	// Authentication errors
	ErrInvalidCredentials = &Error{Kind: KindAuth, Message: "Invalid credentials", Source: "identity"}

	// Link errors
	ErrNotLinked = &Error{Kind: KindNotLinked, Message: "Access token not found", Source: "credentials"}

	// Session errors
	ErrNoSession       = errors.New("no session in context")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Error is the structured failure returned by every core operation.
// Type and Source end up in the "type" and "module" fields of the
// response envelope.
type Error struct {
	Kind      Kind
	Message   string
	Type      string
	Source    string
	Code      string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so callers can test against the
// sentinels above without caring about the payload.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a structured error of the given kind
func New(kind Kind, source, message string) *Error {
	return &Error{Kind: kind, Source: source, Message: message, Type: string(kind)}
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
