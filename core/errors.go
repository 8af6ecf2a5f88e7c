package core

import (
	"errors"
	"fmt"
)

// InternalError signals a broken invariant inside the engine: something that
// should have been ruled out by type checking, or a misuse of the API by the
// host. It is never meant to be shown to an end user as a formula problem.
type InternalError struct {
	Msg   string
	Cause error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s: %v", e.Msg, e.Cause)
	}
	return "internal error: " + e.Msg
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// NewInternalError builds an InternalError without raising it.
func NewInternalError(format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

// Internalf raises an InternalError.  Public entry points recover these with
// RecoverInternal and hand them back as ordinary errors.
func Internalf(format string, args ...any) {
	panic(NewInternalError(format, args...))
}

// EnsureNoErr panics with an InternalError wrapping err if err is not nil.
func EnsureNoErr(err error, args ...any) {
	if err == nil {
		return
	}
	msg := "unexpected error"
	if len(args) > 0 {
		if format, ok := args[0].(string); ok {
			msg = fmt.Sprintf(format, args[1:]...)
		}
	}
	Error("%s: %v", msg, err)
	panic(&InternalError{Msg: msg, Cause: err})
}

// RecoverInternal converts a recovered InternalError panic into *errp.  Any
// other panic value is re-raised.  Usage:
//
//	defer core.RecoverInternal(&err)
func RecoverInternal(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if ie, ok := r.(*InternalError); ok {
		*errp = ie
		return
	}
	panic(r)
}

// IsInternal reports whether err is or wraps an InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
