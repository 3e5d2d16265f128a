// Package braiderr implements the error taxonomy of spec.md §7 as
// ordinary Go errors, in place of the teacher's sentinel-Object +
// isError() convention (internal/evaluator/helpers.go in the teacher
// repo). Every evaluator entry point returns (Value, error); an error
// of Kind X short-circuits the walk exactly as the teacher's *Error
// Object did.
package braiderr

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind names the member of the error taxonomy. Names are illustrative,
// matching spec.md §7.
type Kind string

const (
	Parse             Kind = "Parse"
	UnboundName       Kind = "UnboundName"
	TypeNotFound      Kind = "TypeNotFound"
	ArityMismatch     Kind = "ArityMismatch"
	PatternMismatch   Kind = "PatternMismatch"
	TypeMismatch      Kind = "TypeMismatch"
	NotCallable       Kind = "NotCallable"
	NotIterable       Kind = "NotIterable"
	Unbuildable       Kind = "Unbuildable"
	ExpandOutsideCtx  Kind = "ExpandOutsideContext"
	NonBoolean        Kind = "NonBoolean"
	AssertionFailed   Kind = "AssertionFailed"
	NonPositiveDim    Kind = "NonPositiveDim"
	InvalidSliceRange Kind = "InvalidSliceRange"
	InvalidWeight     Kind = "InvalidWeight"
	NoIndexDecoding   Kind = "NoIndexDecoding"
	ResourceLoad      Kind = "ResourceLoad"
	Unimplemented     Kind = "Unimplemented"
)

// Error is the single error type surfaced by every package in this
// module. It carries enough context (Kind plus an optional source
// Path) to let a CLI/REPL collaborator render a useful diagnostic
// without this package needing to know about source positions, which
// belong to the (out of scope) parser.
type Error struct {
	Kind     Kind
	Message  string
	Path     string    // set by ResourceLoad / import errors
	CtxTag   uuid.UUID // set by WithContext: which Context snapshot raised this
	hasCtx   bool
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.hasCtx {
		msg += fmt.Sprintf(" [ctx %s]", e.CtxTag)
	}
	return msg
}

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// WithPath attaches a source path to an error (used by the resource
// loader and the `import` macro).
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithContext tags an error with the debugging Tag of the Context
// that raised it (value.Context.Tag), so a failing `import` chain's
// diagnostic names which fresh stdlib Context the failure came from —
// purely a debugging aid, never consulted by evaluation itself.
func (e *Error) WithContext(tag uuid.UUID) *Error {
	e.CtxTag = tag
	e.hasCtx = true
	return e
}

// Of extracts the Kind from an error produced by this module. Callers
// compare the Kind directly; there is no errors.Is sentinel layer,
// matching the closed taxonomy in spec.md §7.
func Of(err error) (Kind, bool) {
	if be, ok := err.(*Error); ok {
		return be.Kind, true
	}
	return "", false
}
