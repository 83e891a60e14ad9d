package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"
)

// Kind is the stable, machine-checkable category of an error.
type Kind string

const (
	KindValidation       Kind = "validation_failure"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindForbidden        Kind = "forbidden"
	KindUnauthenticated  Kind = "unauthenticated"
	KindNoFieldsToUpdate Kind = "no_fields_to_update"
	KindStorage          Kind = "upstream_storage_failure"
)

// postgres error codes we translate
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"
)

// Error carries a Kind, a caller-facing message and optional field details.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match when target is an *Error of the same kind with no message,
// which lets the Kind sentinels below be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated}
	ErrNoFieldsToUpdate = &Error{Kind: KindNoFieldsToUpdate}
	ErrStorage          = &Error{Kind: KindStorage}
)

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Validation(msg string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

// Field is a shortcut for a validation error on a single field.
func Field(field, msg string) *Error {
	return Validation(msg, map[string]string{field: msg})
}

func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func Conflict(msg string) *Error        { return New(KindConflict, msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg) }
func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }

func NoFieldsToUpdate() *Error { return New(KindNoFieldsToUpdate, "no fields to update") }

// Storage wraps an unexpected store failure. The cause is kept for logs only.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "internal server error", Err: err}
}

// KindOf extracts the Kind of err; unknown errors are storage failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// HTTPStatus maps a Kind to its response status code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindNoFieldsToUpdate:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromStore translates a database error into an *Error. notFound and conflict are
// the messages used for sql.ErrNoRows and unique violations respectively.
func FromStore(err error, notFound, conflict string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound(notFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return &Error{Kind: KindConflict, Message: conflict, Err: err}
		case pqForeignKeyViolation:
			return &Error{Kind: KindValidation, Message: "invalid reference", Err: err}
		case pqInvalidText:
			return &Error{Kind: KindValidation, Message: "invalid input", Err: err}
		}
	}
	return Storage(err)
}

// IsUniqueViolation reports whether err is a unique violation, optionally on a named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pqUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
