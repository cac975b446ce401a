// Package qerr defines the classified errors a query can be rejected with.
package qerr

import (
	"errors"
	"fmt"
)

// Kind is the reason code surfaced to callers.
type Kind string

const (
	MalformedDocument     Kind = "malformed_document"
	InvalidColumns        Kind = "invalid_columns"
	InvalidOrder          Kind = "invalid_order"
	UnknownDataset        Kind = "unknown_dataset"
	CrossDatasetReference Kind = "cross_dataset_reference"
	InvalidFilterShape    Kind = "invalid_filter_shape"
	TypeMismatch          Kind = "type_mismatch"
	InvalidWildcard       Kind = "invalid_wildcard"
	EmptyLogicalArray     Kind = "empty_logical_array"
	ResultTooLarge        Kind = "result_too_large"
)

// Error is a rejected query.
type Error struct {
	Kind    Kind
	Message string
	Key     string // offending qualified key or filter operator, if any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Key != "" {
		base = fmt.Sprintf("%s (key=%s)", base, e.Key)
	}
	return base
}

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithKey creates an error that names the key it was raised for.
func WithKey(kind Kind, key, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Key: key}
}

// IsKind reports whether err is a query error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of a query error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
