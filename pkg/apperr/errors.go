package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ServiceWeaver/weaver"
)

type Kind int

const (
	INTERNAL     Kind = iota // 0
	VALIDATION               // 1
	NOT_FOUND                // 2
	FORBIDDEN                // 3
	CONFLICT                 // 4
	UNAUTHORIZED             // 5
)

func (k Kind) String() string {
	switch k {
	case VALIDATION:
		return "validation"
	case NOT_FOUND:
		return "not_found"
	case FORBIDDEN:
		return "forbidden"
	case CONFLICT:
		return "conflict"
	case UNAUTHORIZED:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is the tagged error returned by every domain operation. It embeds
// weaver.AutoMarshal so it survives remote component calls.
type Error struct {
	weaver.AutoMarshal
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func (e *Error) Status() int {
	switch e.Kind {
	case VALIDATION, CONFLICT:
		return http.StatusUnprocessableEntity
	case NOT_FOUND:
		return http.StatusNotFound
	case FORBIDDEN:
		return http.StatusForbidden
	case UNAUTHORIZED:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrValidation   = &Error{Kind: VALIDATION}
	ErrNotFound     = &Error{Kind: NOT_FOUND}
	ErrForbidden    = &Error{Kind: FORBIDDEN}
	ErrConflict     = &Error{Kind: CONFLICT}
	ErrUnauthorized = &Error{Kind: UNAUTHORIZED}
	ErrInternal     = &Error{Kind: INTERNAL}
)

func newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error   { return newf(VALIDATION, format, args...) }
func NotFound(format string, args ...any) error     { return newf(NOT_FOUND, format, args...) }
func Forbidden(format string, args ...any) error    { return newf(FORBIDDEN, format, args...) }
func Conflict(format string, args ...any) error     { return newf(CONFLICT, format, args...) }
func Unauthorized(format string, args ...any) error { return newf(UNAUTHORIZED, format, args...) }
func Internal(format string, args ...any) error     { return newf(INTERNAL, format, args...) }

// KindOf reports the kind of err. Untagged errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return INTERNAL
}

// StatusOf maps err to the HTTP status code the API answers with.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client facing message of err. Untagged errors
// never leak their text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Internal server error"
}
