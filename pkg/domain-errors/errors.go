// Package domainerrors defines the coded error type shared by services and
// the transport layer. Services attach a code plus a user-facing message;
// the transport layer translates the code into an HTTP status and never
// exposes the technical message to callers.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for boundary translation.
type Code string

const (
	// CodeValidation marks malformed or missing input, detected before any I/O.
	CodeValidation Code = "validation"
	// CodeBadRequest marks requests the transport layer could not interpret.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a business-uniqueness violation (duplicate).
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks a broken aggregate invariant. Services
	// re-classify these as validation errors before they reach the boundary.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks anything unclassified. The boundary must never see a
	// raw infrastructure fault; it sees this code with a resolved message.
	CodeInternal Code = "internal"
)

// Error carries a code, a user-facing message, and a technical message.
// The technical message is for logs only.
type Error struct {
	Code      Code
	Message   string
	Technical string
	Err       error
}

func (e *Error) Error() string {
	if e.Technical != "" && e.Technical != e.Message {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Technical)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error whose user-facing and technical texts coincide.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Technical: message}
}

// NewWithTechnical builds a coded error with distinct user and technical texts.
func NewWithTechnical(code Code, message, technical string) *Error {
	return &Error{Code: code, Message: message, Technical: technical}
}

// Wrap attaches a code and user-facing message to an underlying cause.
// The cause's text becomes the technical message.
func Wrap(err error, code Code, message string) *Error {
	technical := message
	if err != nil {
		technical = err.Error()
	}
	return &Error{Code: code, Message: message, Technical: technical, Err: err}
}

// HasCode reports whether err is (or wraps) a coded error with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// AsError extracts the coded error from err, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	ok := errors.As(err, &de)
	return de, ok
}

// ToHTTPStatus maps a code to its externally observable status category.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest, CodeInvariantViolation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
