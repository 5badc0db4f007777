package throttle

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/gatefs/gatefs/pkg/gatefs/pathgate"
)

// Class tags an error for the retry engine.
type Class int

const (
	// ClassFatal errors are surfaced immediately; retrying would not
	// help and could mask a real problem.
	ClassFatal Class = iota
	// ClassRetryable errors signal descriptor exhaustion and are
	// retried with backoff.
	ClassRetryable
	// ClassAccessDenied errors come from the path gate and never reach
	// the retry engine; the tag exists so callers can classify uniformly.
	ClassAccessDenied
)

// String returns a short tag name for logging.
func (c Class) String() string {
	switch c {
	case ClassRetryable:
		return "retryable"
	case ClassAccessDenied:
		return "access-denied"
	default:
		return "fatal"
	}
}

// Classify inspects the underlying OS error code and tags err. EMFILE
// (process limit) and ENFILE (system limit) are the transient
// descriptor-exhaustion signals; everything else is fatal.
func Classify(err error) Class {
	var accessErr *pathgate.AccessError
	switch {
	case errors.As(err, &accessErr):
		return ClassAccessDenied
	case errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENFILE):
		return ClassRetryable
	default:
		return ClassFatal
	}
}

// ReconfigError reports a capacity change attempted while operations
// were still in flight. The configuration and limiter are untouched.
type ReconfigError struct {
	Active  int
	Pending int
}

func (e *ReconfigError) Error() string {
	return fmt.Sprintf("throttle: cannot change concurrency while operations are in flight (%d active, %d pending)",
		e.Active, e.Pending)
}
