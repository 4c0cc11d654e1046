// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package fyerr defines the core's closed set of error kinds and the
// marked error type every package in this module returns through.
package fyerr

import (
	"errors"
	"fmt"
)

// Kind is one of the structural error kinds named by the core's error
// handling design. It is not a type hierarchy: a single concrete error
// type carries a Kind tag so callers can switch on it with [errors.As]
// and [Is].
type Kind int8

const (
	// NoError is the zero value; never attached to a constructed *Error.
	NoError Kind = iota

	OutOfMemory     // arena/allocator exhaustion
	InvalidInput    // malformed argument to a constructor or opcode
	Overflow        // a size computation would overflow
	KindMismatch    // an operation requires a different Kind
	DuplicateKey    // mapping construction hit a duplicate key with DuplicateKeysDisabled
	PathNotFound    // GetAtPath/SetAtPath couldn't resolve a segment
	IndexOutOfRange // sequence index or slice bound out of range
	SchemaViolation // scalar text doesn't classify under the active schema
	UnresolvedAlias // an Alias node's anchor has no matching definition
	CycleDetected   // a value graph was found to be cyclic
	IoError         // external I/O collaborator failed
)

var kindNames = [...]string{
	NoError:         "no error",
	OutOfMemory:     "out of memory",
	InvalidInput:    "invalid input",
	Overflow:        "overflow",
	KindMismatch:    "kind mismatch",
	DuplicateKey:    "duplicate key",
	PathNotFound:    "path not found",
	IndexOutOfRange: "index out of range",
	SchemaViolation: "schema violation",
	UnresolvedAlias: "unresolved alias",
	CycleDetected:   "cycle detected",
	IoError:         "io error",
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is the marked error type returned by every core operation that can
// fail for a structural reason. It follows the teacher's MarkedYAMLError
// shape: a tagged kind, the operation that raised it, and an optional
// wrapped cause.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "value.NewString" or "builder.Alloc"
	Msg  string
	Err  error // optional wrapped cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fy: %s: %s: %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("fy: %s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, fyerr.New(fyerr.OutOfMemory, "", "")) works as a kind test.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New constructs an *Error with no wrapped cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap constructs an *Error wrapping an existing cause.
func Wrap(kind Kind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

// KindOf returns the Kind carried by err, or NoError if err is nil or not
// an *Error produced by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return NoError
}
