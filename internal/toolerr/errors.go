// Package toolerr defines the typed error taxonomy shared by every tool
// handler. Errors are raised deep inside the connection manager, carried up
// unchanged, and classified exactly once at the dispatch boundary.
package toolerr

import (
	"fmt"
)

// Kind identifies the category of a tool failure.
type Kind string

const (
	// KindConnection means no browser connection matched the request.
	KindConnection Kind = "CONNECTION"
	// KindDebugger means the operation needs the CDP debugger enabled.
	KindDebugger Kind = "DEBUGGER"
	// KindStatePaused means the operation requires a running (not paused) page.
	KindStatePaused Kind = "STATE_PAUSED"
	// KindStateRunning means the operation requires a paused page.
	KindStateRunning Kind = "STATE_RUNNING"
	// KindExecution means a CDP command or page script failed.
	KindExecution Kind = "EXECUTION"
	// KindUnknown is the fallback for unclassified failures.
	KindUnknown Kind = "UNKNOWN"
)

// hints maps each kind to the recovery advice surfaced alongside the message.
var hints = map[Kind]string{
	KindConnection:   "Use chrome with action 'connect' or 'launch' to establish a browser connection first",
	KindDebugger:     "Call enable_debug_tools to create a debugger session first",
	KindStatePaused:  "Execution is paused; resume or step before retrying this operation",
	KindStateRunning: "Execution is not paused; set a breakpoint or pause execution first",
}

// Recoverable reports whether an agent can reasonably retry after errors of
// this kind.
func (k Kind) Recoverable() bool {
	switch k {
	case KindConnection, KindDebugger, KindStatePaused, KindStateRunning:
		return true
	case KindExecution:
		return true
	default:
		return false
	}
}

// Error is the typed failure carried out of the connection manager and tool
// handlers. It wraps an optional cause and carries a recovery hint.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	Cause   error
}

// New creates an Error of the given kind with the default hint for that kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Hint: hints[kind]}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates an Error of the given kind around an underlying cause. The
// cause's message is preserved verbatim for EXECUTION errors.
func Wrap(cause error, kind Kind, message string) *Error {
	e := New(kind, message)
	e.Cause = cause
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches errors by kind so callers can use errors.Is with a sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Kind == t.Kind
}

// Recoverable reports whether this error's kind is recoverable.
func (e *Error) Recoverable() bool { return e.Kind.Recoverable() }

// Classify returns the typed form of err. Typed errors pass through
// untouched; anything else becomes UNKNOWN.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if te, ok := err.(*Error); ok {
		return te
	}
	return &Error{Kind: KindUnknown, Message: err.Error(), Cause: err}
}

// Execution wraps a CDP or page-script failure, preserving the underlying
// message verbatim.
func Execution(cause error, operation string) *Error {
	return Wrap(cause, KindExecution, fmt.Sprintf("%s failed: %v", operation, cause))
}
