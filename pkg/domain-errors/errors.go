// Package dErrors defines the domain error taxonomy for custodia.
//
// Every rejected operation surfaces exactly one of these codes so callers can
// tell which rule was violated and correct the submitted data. Errors carry a
// code plus a human-readable message; services wrap infrastructure failures
// with CodeInternal rather than leaking driver errors to transport.
package dErrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain error.
type Code string

// Custody rule violations. Each mutating operation on a custody record either
// fully succeeds or fails with one of these and has no effect.
const (
	// CodeEmptyIdentifier rejects record creation with an empty item ID.
	CodeEmptyIdentifier Code = "empty_identifier"
	// CodeUnknownCategory rejects a participant category outside the closed set.
	CodeUnknownCategory Code = "unknown_category"
	// CodeVendorReturn rejects any handover that would route an item back to a vendor.
	CodeVendorReturn Code = "vendor_return_forbidden"
	// CodeUnauthorized rejects mutations by anyone but the record's primary authority.
	CodeUnauthorized Code = "unauthorized"
	// CodeBrokenChain rejects a handover not initiated by the current holder.
	CodeBrokenChain Code = "broken_chain"
	// CodeUnknownHandover rejects condition attachment when no logged leg matches.
	CodeUnknownHandover Code = "unknown_handover"
	// CodeIndexOutOfRange rejects log access past the end of the handover log.
	CodeIndexOutOfRange Code = "index_out_of_range"
)

// Infrastructure and transport-facing codes.
const (
	CodeValidation Code = "validation_error"
	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeForbidden  Code = "forbidden"
	CodeInternal   Code = "internal_error"
)

// Error is the concrete domain error type. Compare with HasCode rather than
// type assertions so wrapped errors keep working.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As chains.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the domain code from err, or CodeInternal when err is not a
// domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the human-readable message from err, or an empty string
// when err is not a domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
