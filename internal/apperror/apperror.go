// Package apperror defines the gateway's error taxonomy. Every failure that
// crosses a handler boundary is classified so the HTTP layer can map it to a
// status code and an error_type tag without inspecting message strings.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the taxonomy tag surfaced in JSON error bodies.
type Kind string

const (
	KindAuthentication  Kind = "authentication_error"
	KindAuthorization   Kind = "authorization_error"
	KindValidation      Kind = "validation_error"
	KindNotFound        Kind = "not_found_error"
	KindExternalService Kind = "external_service_error"
	KindInternal        Kind = "internal_server_error"
)

// Error carries a Kind alongside a human-readable message and an optional
// wrapped cause.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error. A nil err returns nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, msg: msg, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

// KindOf walks the error chain for a classified error. Unclassified errors
// are internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind
	}
	return KindInternal
}

// IsKind reports whether the error chain carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// StatusOf maps an error to its default HTTP status.
func StatusOf(err error) int {
	switch KindOf(err) {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
