// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package apierror defines the error taxonomy shared by the provisioning
// flows and its mapping onto HTTP status codes.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindExpired         Kind = "expired"
	KindForbidden       Kind = "forbidden"
	KindUnauthenticated Kind = "unauthenticated"
	KindUpstream        Kind = "upstream_failure"
	// KindPartialSuccess marks a side effect that failed after the primary
	// operation committed. It is logged, never returned to a caller.
	KindPartialSuccess Kind = "partial_success"
)

var (
	ErrAlreadyUsed   = errors.New("invitation already used")
	ErrDuplicateSlug = errors.New("organization slug already taken")
	ErrSelfTarget    = errors.New("operation cannot target the caller")

	ErrBootstrapTaken = errors.New("first organization bootstrap already claimed")
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, apierror.NotFound(""))
// works without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) HTTPStatus() int {
	return StatusCode(e.Kind)
}

func StatusCode(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExpired:
		return http.StatusGone
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Conflict(err error, message string) *Error {
	return Wrap(KindConflict, err, message)
}

func Expired(message string) *Error {
	return New(KindExpired, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

func Upstream(err error, message string) *Error {
	return Wrap(KindUpstream, err, message)
}

// KindOf returns the Kind of the first *Error in the chain, or an empty Kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
