// Package errors provides structured error reporting for the data
// binding runtime. Nothing in the runtime is allowed to escalate into
// the host frame loop; failures are reported here and the operation
// degrades to an empty result.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindRegistration indicates a type or member registration failure.
	// These are fatal at setup time; the registration yields an invalid
	// handle the caller must check.
	KindRegistration
	// KindResolution indicates an address resolution failure: unknown
	// root name, missing member, out-of-range index, or a malformed
	// address string. These are recoverable; the lookup yields an
	// empty variable.
	KindResolution
	// KindParse indicates an expression compile failure. The expression
	// is permanently disabled and evaluates to the empty value.
	KindParse
	// KindRun indicates an expression runtime failure. The expression
	// falls back to its last successfully computed value.
	KindRun
)

func (k ErrorKind) String() string {
	switch k {
	case KindRegistration:
		return "registration"
	case KindResolution:
		return "resolution"
	case KindParse:
		return "parse"
	case KindRun:
		return "run"
	default:
		return "unknown"
	}
}

// BindError represents a structured error in the binding runtime.
type BindError struct {
	// Op is the operation that failed (e.g., "databind.ResolveAddress").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Expression is the offending expression source, if applicable.
	Expression string
	// Address is the offending data address string, if applicable.
	Address string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BindError) Error() string {
	switch {
	case e.Expression != "":
		return fmt.Sprintf("%s [%s] expression %q: %v", e.Op, e.Kind, e.Expression, e.Err)
	case e.Address != "":
		return fmt.Sprintf("%s [%s] address %q: %v", e.Op, e.Kind, e.Address, e.Err)
	default:
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// Handler receives errors reported by the binding runtime.
type Handler interface {
	// HandleError is called when an error occurs.
	HandleError(err *BindError)
}
