package domain

import (
	"errors"
	"fmt"
)

// The ledger classifies every failed operation into one of four kinds:
//
//   - ConstraintViolationError: the caller asked for something invalid
//     (self-merge, merge onto a dead identity). Not retryable.
//   - ConflictError: the operation lost a race with a concurrent transaction
//     (lock timeout, unique-key hit from an earlier committer). Retryable;
//     the ledger never retries internally.
//   - ReferentialViolationError: a deletion bypassed the cascade path while
//     the identity was still referenced. A caller bug, not retryable.
//   - UnavailableError: the store itself failed (I/O, connection). Retryable
//     with backoff, and never to be read as a consistency conflict.

// ConstraintViolationError is returned when an operation would break a ledger
// invariant regardless of concurrency.
type ConstraintViolationError struct {
	Op     string
	Detail string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("%s: constraint violation: %s", e.Op, e.Detail)
}

// ConflictError is returned when an operation lost a race with a concurrent
// transaction and should be retried by the caller.
type ConflictError struct {
	Op     string
	Detail string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: conflict: %s", e.Op, e.Detail)
}

// ReferentialViolationError is returned when a person still referenced as an
// override target is deleted without going through the cascade path.
type ReferentialViolationError struct {
	Op     string
	Detail string
}

func (e *ReferentialViolationError) Error() string {
	return fmt.Sprintf("%s: referential violation: %s", e.Op, e.Detail)
}

// UnavailableError wraps a storage failure that is unrelated to ledger
// consistency.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: store unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsConstraintViolation reports whether err classifies as a non-retryable
// caller error.
func IsConstraintViolation(err error) bool {
	var cv *ConstraintViolationError
	return errors.As(err, &cv)
}

// IsConflict reports whether err classifies as a retryable race loss.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsReferentialViolation reports whether err classifies as a deletion that
// bypassed the cascade path.
func IsReferentialViolation(err error) bool {
	var rv *ReferentialViolationError
	return errors.As(err, &rv)
}

// IsUnavailable reports whether err classifies as a storage failure.
func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}

// Retryable reports whether the caller may retry the operation. Conflicts and
// store outages are retryable; constraint and referential violations are not.
func Retryable(err error) bool {
	return IsConflict(err) || IsUnavailable(err)
}
