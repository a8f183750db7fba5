package pdf

import (
	stderrs "errors"
	"fmt"
)

// ErrorCode classifies failures surfaced by the detection and removal engine
type ErrorCode uint8

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodeInvalidDocument is for documents the access layer cannot open or parse
	ErrorCodeInvalidDocument

	// ErrorCodeInvalidParameter is for out-of-range thresholds, budgets or policies
	ErrorCodeInvalidParameter

	// ErrorCodePageAccess is for per-page extraction, search or redaction failures
	ErrorCodePageAccess

	// ErrorCodeSaveFailure is for export failures
	ErrorCodeSaveFailure
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeInvalidDocument:
		return "invalid_document"
	case ErrorCodeInvalidParameter:
		return "invalid_parameter"
	case ErrorCodePageAccess:
		return "page_access_failure"
	case ErrorCodeSaveFailure:
		return "save_failure"
	default:
		return "unknown"
	}
}

// Error is the structured error type returned by this package.
// msg is developer facing, op names the failing operation, orig is the cause.
type Error struct {
	orig error
	msg  string
	code ErrorCode
	op   string
}

// NewError builds an *Error without a cause
func NewError(code ErrorCode, op, msg string) *Error {
	return &Error{code: code, op: op, msg: msg}
}

// Wrap builds an *Error around cause. A nil cause returns nil.
func Wrap(cause error, code ErrorCode, op, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{orig: cause, code: code, op: op, msg: msg}
}

// Errorf builds an *Error with a formatted message
func Errorf(code ErrorCode, op, format string, args ...any) *Error {
	return &Error{code: code, op: op, msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	prefix := e.msg
	if e.op != "" {
		prefix = e.op + ": " + e.msg
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", prefix, e.orig)
	}
	return prefix
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Op returns the operation label
func (e *Error) Op() string { return e.op }

// Message returns the message without op or cause
func (e *Error) Message() string { return e.msg }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }
