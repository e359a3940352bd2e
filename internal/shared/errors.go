package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures for callers and transport mapping.
type ErrorKind string

const (
	KindNotFound             ErrorKind = "not_found"
	KindInvalidArgument      ErrorKind = "invalid_argument"
	KindImmutable            ErrorKind = "immutable"
	KindReferentialIntegrity ErrorKind = "referential_integrity"
)

// Error carries the failure kind and the offending field, when known.
type Error struct {
	Kind  ErrorKind
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Msg, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// NotFound reports an unknown identifier for the named entity.
func NotFound(entity, field string) *Error {
	return &Error{Kind: KindNotFound, Field: field, Msg: entity + " not found"}
}

// InvalidArgument reports a rejected input value.
func InvalidArgument(field, msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Field: field, Msg: msg}
}

// Immutable reports an attempt to change a field locked at creation.
func Immutable(field string) *Error {
	return &Error{Kind: KindImmutable, Field: field, Msg: "field cannot change after creation"}
}

// ReferentialIntegrity reports a delete blocked by existing references.
func ReferentialIntegrity(entity string) *Error {
	return &Error{Kind: KindReferentialIntegrity, Msg: entity + " is referenced by vouchers"}
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the kind from err, or empty string for untyped errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
