// internal/app/system/apperr/apperr.go

// Package apperr is the application error taxonomy. Stores and
// workflows return these; the HTTP boundary maps them to a status code
// and a safe message exactly once. Anything not in the taxonomy is a
// 500 with a generic body.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for HTTP mapping.
type Kind int

const (
	KindValidation Kind = iota // missing/malformed required field
	KindDuplicate              // uniqueness violation, carries a field name
	KindNotFound               // referenced entity absent
	KindAuth                   // missing/invalid/expired token, bad credentials
	KindConflict               // state rule violated (already a member, club not approved)
	KindUpstream               // external collaborator (media host) failed
)

// Error is a classified application error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Field   string // set for KindDuplicate
	Err     error  // wrapped cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a 400 validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Duplicate builds a 400 duplicate error naming the violated field.
func Duplicate(field string) *Error {
	return &Error{Kind: KindDuplicate, Field: field, Message: fmt.Sprintf("a record with this %s already exists", field)}
}

// NotFound builds a 404 error.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// Auth builds a 401 error.
func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

// Conflict builds a 400 state-conflict error.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps an external-service failure. The cause stays in logs.
func Upstream(msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: cause}
}

// As extracts an *Error from err, if present.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Status returns the HTTP status code for err. Unclassified errors map
// to 500.
func Status(err error) int {
	ae, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation, KindDuplicate, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
