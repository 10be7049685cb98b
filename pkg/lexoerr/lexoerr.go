// Package lexoerr defines the sentinel errors for the engine's six error
// kinds and an AppError wrapper carrying the kind plus a human-readable
// message, grounded on the teacher's pkg/errors: a sentinel-error set plus
// a wrapping struct with a classifier function, here reworked from
// HTTP status classification into the severity classification the spec's
// ERROR HANDLING DESIGN calls for (best-effort for every kind except
// LockOwnershipError, which is fatal).
package lexoerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInputMissing marks a requested path or flag value that was absent.
	ErrInputMissing = errors.New("input missing")
	// ErrIO marks a file read, HTTP fetch, or output write failure.
	ErrIO = errors.New("i/o failure")
	// ErrMalformedInput marks an unparseable URL, number, or header.
	ErrMalformedInput = errors.New("malformed input")
	// ErrLockOwnership marks a write-unlock attempted by a non-owner.
	ErrLockOwnership = errors.New("lock ownership violation")
	// ErrInterrupted marks a worker interrupted while waiting.
	ErrInterrupted = errors.New("interrupted")
	// ErrTaskFailure marks any other failure raised inside a worker task.
	ErrTaskFailure = errors.New("task failure")
)

// AppError wraps one of the sentinel errors above with contextual detail —
// which unit (file, URL, output target) the failure affected.
type AppError struct {
	Err     error
	Unit    string
	Message string
}

func (e *AppError) Error() string {
	if e.Unit == "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Unit)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps sentinel with a message and the unit it affected.
func New(sentinel error, unit, message string) *AppError {
	return &AppError{Err: sentinel, Unit: unit, Message: message}
}

// Newf is New with a formatted message.
func Newf(sentinel error, unit, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Unit: unit, Message: fmt.Sprintf(format, args...)}
}

// Fatal reports whether err should abort the run rather than be logged and
// skipped. Per the propagation policy, only LockOwnershipError is fatal —
// every other kind is best-effort: log to stderr, skip the affected unit,
// continue.
func Fatal(err error) bool {
	return errors.Is(err, ErrLockOwnership)
}
