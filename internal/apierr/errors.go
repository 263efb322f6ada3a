// Package apierr defines the closed set of failures the API layer may
// return. Every error leaving the request path is one of these; callers
// switch on Kind rather than inspecting transport errors themselves.
package apierr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindNetworkUnavailable
	KindRequestTimeout
	KindServerUnavailable
	KindUnauthorized
	KindForbidden
	KindConflict
	KindServerError
	KindDecodingFailed
	KindEncodingFailed
	KindNoData
)

// Error carries a classified failure. StatusCode is set only for kinds
// produced from an HTTP response.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Base       error
}

func NewInvalidURL(raw string) *Error {
	return &Error{Kind: KindInvalidURL, Message: fmt.Sprintf("invalid request URL: %s", raw)}
}

func NewNetworkUnavailable(base error) *Error {
	return &Error{Kind: KindNetworkUnavailable, Message: "network unavailable", Base: base}
}

func NewRequestTimeout(base error) *Error {
	return &Error{Kind: KindRequestTimeout, Message: "request timed out", Base: base}
}

func NewServerUnavailable(base error) *Error {
	return &Error{Kind: KindServerUnavailable, Message: "server unavailable", Base: base}
}

func NewUnauthorized() *Error {
	return &Error{Kind: KindUnauthorized, StatusCode: 401, Message: "unauthorized"}
}

func NewForbidden() *Error {
	return &Error{Kind: KindForbidden, StatusCode: 403, Message: "forbidden"}
}

func NewConflict(message string) *Error {
	if message == "" {
		message = "conflict"
	}
	return &Error{Kind: KindConflict, StatusCode: 409, Message: message}
}

// NewServerError records a non-2xx status outside the dedicated kinds.
// message may be empty when the error body was absent or unparseable.
func NewServerError(statusCode int, message string) *Error {
	return &Error{Kind: KindServerError, StatusCode: statusCode, Message: message}
}

func NewDecodingFailed(base error) *Error {
	return &Error{Kind: KindDecodingFailed, Message: "failed to decode server response", Base: base}
}

func NewEncodingFailed(base error) *Error {
	return &Error{Kind: KindEncodingFailed, Message: "failed to encode request body", Base: base}
}

func NewNoData() *Error {
	return &Error{Kind: KindNoData, Message: "server returned no data"}
}

func NewUnknown(message string, base error) *Error {
	if message == "" {
		message = "unexpected error"
	}
	return &Error{Kind: KindUnknown, Message: message, Base: base}
}

// FromError returns err as *Error, wrapping into KindUnknown when it is
// not already classified.
func FromError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewUnknown(err.Error(), err)
}

func (e *Error) Error() string {
	if e.Kind == KindServerError {
		if e.Message == "" {
			return fmt.Sprintf("server error (status %d)", e.StatusCode)
		}
		return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Base
}

// Is matches on Kind so callers can use errors.Is with a constructor
// value as the target.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
