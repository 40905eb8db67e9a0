// Package errors pairs a short failure description with the stack trace of
// the wrapped cause, so the logger can point at the call site that first saw
// the error.
package errors

import "github.com/pkg/errors"

// StackTracer is satisfied by errors that carry a pkg/errors stack trace.
// The logger checks for it when rendering an error entry.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTracer describes a failure and, once Wrap is called, its cause. A
// tracer without a cause is a valid error on its own.
type ErrorTracer struct {
	Message string
	Err     error
}

// NewTracer creates a tracer carrying only a description.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{Message: message}
}

// Wrap records err as the cause, attaching a stack trace at this call site
// unless err already carries one.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	if _, ok := err.(StackTracer); ok {
		e.Err = err
		return e
	}
	e.Err = errors.WithStack(err)
	return e
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// StackTrace exposes the cause's stack, or nil when there is no cause or the
// cause carries none.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if st, ok := e.Err.(StackTracer); ok {
		return st.StackTrace()
	}
	return nil
}
