package service

import (
	"errors"

	"commandlayer/internal/llm"
)

// ErrorCode is the closed set of request failure kinds surfaced to callers.
type ErrorCode string

const (
	CodeInvalidRequest      ErrorCode = "invalid_request"
	CodeMissingFields       ErrorCode = "missing_fields"
	CodeInvalidPayload      ErrorCode = "invalid_payload"
	CodeProviderTimeout     ErrorCode = "provider_timeout"
	CodeProviderHTTPError   ErrorCode = "provider_http_error"
	CodeProviderUnavailable ErrorCode = "provider_unavailable"
	CodeForbidden           ErrorCode = "forbidden"
	CodeUnauthorized        ErrorCode = "unauthorized"
	CodeRateLimited         ErrorCode = "rate_limited"
)

// Error is a typed request failure with enough detail to fix the request.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// translateProviderError maps typed provider failures onto the request
// failure taxonomy. Non-provider errors pass through unchanged.
func translateProviderError(err error) error {
	var provErr *llm.Error
	if !errors.As(err, &provErr) {
		return err
	}
	switch provErr.Kind {
	case llm.ErrKindTimeout:
		return NewError(CodeProviderTimeout, provErr.Message)
	case llm.ErrKindUnavailable:
		return NewError(CodeProviderUnavailable, provErr.Message)
	default:
		return NewError(CodeProviderHTTPError, provErr.Message)
	}
}
