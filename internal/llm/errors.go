package llm

import "fmt"

// ErrorKind is the closed set of provider failure kinds. Transport errors
// never leave this package untyped.
type ErrorKind string

const (
	ErrKindUnavailable ErrorKind = "provider_unavailable"
	ErrKindTimeout     ErrorKind = "provider_timeout"
	ErrKindHTTP        ErrorKind = "provider_http_error"
	ErrKindBadResponse ErrorKind = "provider_bad_response"
)

// Error is a typed provider failure.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}
