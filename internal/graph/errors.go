package graph

import (
	"errors"
	"fmt"

	"github.com/roach88/jsgraph/internal/jid"
)

// ErrorCode categorizes graph and storage errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates an identifier or name lookup miss.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeCorruptState indicates an IDList member that cannot be resolved,
	// or a stored record that cannot be decoded. The graph and storage are
	// out of sync.
	ErrCodeCorruptState ErrorCode = "CORRUPT_STATE"

	// ErrCodeTypeMismatch indicates a record whose declared entity type does
	// not match the variant loading it, or an unknown entity type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeStorageFailure indicates a backend I/O error. Never retried here.
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
)

// Error is the typed error returned by graph operations and hooks.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ID identifies the entity involved, if any.
	ID jid.ID

	// Name is the name used for a by-name lookup, if any.
	Name string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if !e.ID.IsNil() {
		msg += fmt.Sprintf(" (id=%s)", e.ID)
	}
	if e.Name != "" {
		msg += fmt.Sprintf(" (name=%q)", e.Name)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

// IsNotFound reports whether err is (or wraps) a NOT_FOUND error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsCorruptState reports whether err is (or wraps) a CORRUPT_STATE error.
func IsCorruptState(err error) bool { return hasCode(err, ErrCodeCorruptState) }

// IsTypeMismatch reports whether err is (or wraps) a TYPE_MISMATCH error.
func IsTypeMismatch(err error) bool { return hasCode(err, ErrCodeTypeMismatch) }

// IsStorageFailure reports whether err is (or wraps) a STORAGE_FAILURE error.
func IsStorageFailure(err error) bool { return hasCode(err, ErrCodeStorageFailure) }

// NewNotFound reports a missing identifier. Backends return it from Load.
func NewNotFound(id jid.ID) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "object not found", ID: id}
}

func newNotFoundByName(name string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "no member with name", Name: name}
}

func newCorruptState(id jid.ID, msg string, cause error) *Error {
	return &Error{Code: ErrCodeCorruptState, Message: msg, ID: id, Err: cause}
}

func newTypeMismatch(id jid.ID, want, got EntityType) *Error {
	return &Error{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("expected entity type %q, got %q", want, got),
		ID:      id,
	}
}

// NewStorageFailure wraps a backend error.
func NewStorageFailure(msg string, cause error) *Error {
	return &Error{Code: ErrCodeStorageFailure, Message: msg, Err: cause}
}
