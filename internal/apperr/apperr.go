// Package apperr defines the error kinds surfaced by services and mapped to
// transport responses by httpx.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindForbidden
	KindAlreadySet
	KindConflict
	KindUpstream
	KindQuotaExceeded
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindAlreadySet:
		return "already_set"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	case KindQuotaExceeded:
		return "quota_exceeded"
	default:
		return "unknown"
	}
}

// Error is the single error type used across the service layer.
// Code carries the upstream machine code when one was reported (e.g. a
// postgres SQLSTATE or an auth provider error code).
type Error struct {
	Kind    Kind
	Message string
	Code    string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below can be used
// with errors.Is. A quota error also matches ErrUpstream.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindUpstream && e.Kind == KindQuotaExceeded
}

// Sentinels for errors.Is.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAuth          = &Error{Kind: KindAuth}
	ErrForbidden     = &Error{Kind: KindForbidden}
	ErrAlreadySet    = &Error{Kind: KindAlreadySet}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrUpstream      = &Error{Kind: KindUpstream}
	ErrQuotaExceeded = &Error{Kind: KindQuotaExceeded}
)

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func Auth(msg string) *Error { return &Error{Kind: KindAuth, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

func AlreadySet(msg string) *Error { return &Error{Kind: KindAlreadySet, Message: msg} }

func Conflict(msg, code string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Code: code, Err: err}
}

func Upstream(msg, code string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Code: code, Err: err}
}

func QuotaExceeded(msg string, err error) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
