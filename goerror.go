package mosig

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignal = errors.New("invalid signal")
	ErrInvalidMaskOp = errors.New("invalid mask operation")
	ErrNoSuchProcess = errors.New("no such process")
	ErrNoSavedFrame  = errors.New("no saved frame")
	ErrNoFreeEnv     = errors.New("no free env")
	ErrIPCNotRecv    = errors.New("target is not receiving")
	ErrInterrupted   = errors.New("interrupted by signal")
)

// Negative error codes returned to user space in V0.
const (
	EInvalidSignal = -1
	EInvalidMaskOp = -2
	ENoSuchProcess = -3
	ENoSavedFrame  = -4
	ENoFreeEnv     = -5
	EIPCNotRecv    = -6
	EInterrupted   = -7
	EUnspecified   = -8
)

var errnoTable = []struct {
	code int32
	err  error
}{
	{EInvalidSignal, ErrInvalidSignal},
	{EInvalidMaskOp, ErrInvalidMaskOp},
	{ENoSuchProcess, ErrNoSuchProcess},
	{ENoSavedFrame, ErrNoSavedFrame},
	{ENoFreeEnv, ErrNoFreeEnv},
	{EIPCNotRecv, ErrIPCNotRecv},
	{EInterrupted, ErrInterrupted},
}

// SigError carries one of the sentinel errors plus a message.
type SigError struct {
	err error
	msg string
}

// Raise wraps err with msg.
func Raise(err error, msg string) error {
	return &SigError{err, msg}
}

// Raisef wraps err with a formatted message.
func Raisef(err error, format string, args ...interface{}) error {
	return Raise(err, fmt.Sprintf(format, args...))
}

// Error implements error interface
func (e *SigError) Error() string {
	return e.err.Error() + ": " + e.msg
}

// Unwrap returns inner error
func (e *SigError) Unwrap() error {
	return e.err
}

// Errno converts err to the code a syscall leaves in V0. nil maps to 0.
func Errno(err error) int32 {
	if err == nil {
		return 0
	}
	for _, e := range errnoTable {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return EUnspecified
}

// ErrnoError converts a V0 code back to an error, nil for non-negative codes.
func ErrnoError(code int32) error {
	if code >= 0 {
		return nil
	}
	for _, e := range errnoTable {
		if e.code == code {
			return e.err
		}
	}
	return fmt.Errorf("error code %d", code)
}
