// Package apperr classifies failures into the categories the HTTP and CLI
// surfaces know how to present.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the user-visible category of a failure.
type Kind int

const (
	// KindUnknown is reported for errors that were never classified.
	KindUnknown Kind = iota
	// KindValidation covers input the caller must correct before retrying.
	KindValidation
	// KindPermission covers privileged writes rejected by the session or the store.
	KindPermission
	// KindTransient covers network and storage failures; the caller re-triggers manually.
	KindTransient
	// KindNotFound covers missing records on paths that do not degrade to a default.
	KindNotFound
	// KindConflict covers uniqueness violations such as a duplicate form slug.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindTransient:
		return "transient"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error carries a Kind, the operation that failed and an optional localized message.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Message != "":
		return e.Message
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kinder is implemented by domain errors that know their own category.
type Kinder interface {
	Kind() Kind
}

// New builds an error without an underlying cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap attaches a Kind to err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validation is shorthand for New(KindValidation, op, message).
func Validation(op, message string) *Error {
	return New(KindValidation, op, message)
}

// Permission is shorthand for New(KindPermission, op, message).
func Permission(op, message string) *Error {
	return New(KindPermission, op, message)
}

// NotFound is shorthand for New(KindNotFound, op, message).
func NotFound(op, message string) *Error {
	return New(KindNotFound, op, message)
}

// Conflict is shorthand for New(KindConflict, op, message).
func Conflict(op, message string) *Error {
	return New(KindConflict, op, message)
}

// Transient wraps err as a retryable I/O failure.
func Transient(op string, err error) error {
	return Wrap(KindTransient, op, err)
}

// KindOf returns the first Kind found in err's chain. Unclassified non-nil
// errors are reported as KindTransient since they originate from remote calls.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	var kinder Kinder
	if errors.As(err, &kinder) {
		return kinder.Kind()
	}
	return KindTransient
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the first localized message found in err's chain, or fallback.
func MessageOf(err error, fallback string) string {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			if e.Message != "" {
				return e.Message
			}
		case interface{ UserMessage() string }:
			if text := e.UserMessage(); text != "" {
				return text
			}
		}
		err = errors.Unwrap(err)
	}
	return fallback
}
