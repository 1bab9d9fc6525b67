// Package toolerr defines the tagged errors produced while executing a tool
// call and their mapping onto JSON-RPC error codes.
//
// Every failure that reaches the dispatcher carries a Kind. Callers build
// errors with the constructors below and the dispatcher maps the kind to a
// protocol code with Code, so no call site needs to know which concrete
// error type a lower layer returned.
package toolerr

import (
	"errors"
	"fmt"
)

// Kind classifies a tool failure.
type Kind int

const (
	// KindInternal is any failure not otherwise classified.
	KindInternal Kind = iota
	// KindValidation covers missing or malformed tool arguments.
	KindValidation
	// KindLookup covers references that do not resolve to a file.
	KindLookup
	// KindCapture covers failures of the screen capture mechanism.
	KindCapture
	// KindUnknownTool is returned for tool names not in the catalog.
	KindUnknownTool
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindLookup:
		return "lookup"
	case KindCapture:
		return "capture"
	case KindUnknownTool:
		return "unknown_tool"
	default:
		return "internal"
	}
}

// Code returns the JSON-RPC error code a kind is surfaced as.
func Code(k Kind) int {
	switch k {
	case KindValidation, KindLookup:
		return CodeInvalidParams
	case KindUnknownTool:
		return CodeMethodNotFound
	default:
		return CodeInternalError
	}
}

// Error is a tool failure tagged with its Kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports a bad or missing argument.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Lookup reports a reference that could not be found.
func Lookup(format string, args ...any) *Error {
	return &Error{Kind: KindLookup, Message: fmt.Sprintf(format, args...)}
}

// Capture wraps a failure of the capture mechanism.
func Capture(err error) *Error {
	return &Error{Kind: KindCapture, Message: "Screenshot failed", Err: err}
}

// UnknownTool reports a tool name that is not in the catalog.
func UnknownTool(name string) *Error {
	return &Error{Kind: KindUnknownTool, Message: "Unknown tool: " + name}
}

// Internal wraps any other failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// KindOf returns the kind carried by err, or KindInternal when err is not
// a tagged error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindInternal
}
