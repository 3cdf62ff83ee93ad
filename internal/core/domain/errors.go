// Package domain defines the value types and error taxonomy of kvsh.
package domain

import (
	"errors"
	"fmt"
)

// DomainError is a user-facing error with a stable code.
// Codes have the form KV-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "KV-USAGE-4000")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another *DomainError by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// UserMessage returns the text shown to the user for err: the innermost
// cause for wrapped store failures, the details or message otherwise.
func UserMessage(err error) string {
	var de *DomainError
	if !errors.As(err, &de) {
		return err.Error()
	}
	if de.Cause != nil {
		return UserMessage(de.Cause)
	}
	if de.Details != "" {
		return de.Details
	}
	return de.Message
}

// ============================================================================
// Command Errors
// ============================================================================

var (
	// ErrUsage indicates a rich verb was called with the wrong arguments.
	ErrUsage = NewDomainError("KV-USAGE-4000", "invalid usage")

	// ErrUnsupportedType indicates a key holds a type the shell cannot render.
	ErrUnsupportedType = NewDomainError("KV-TYPE-4150", "unsupported type")
)

// ============================================================================
// Store Errors
// ============================================================================

var (
	// ErrStore wraps any failure raised by the store collaborator.
	ErrStore = NewDomainError("KV-STORE-5020", "store command failed")

	// ErrUnexpectedReply indicates a reply whose shape does not match the command.
	ErrUnexpectedReply = NewDomainError("KV-PROTO-5021", "unexpected reply")

	// ErrNotConnected indicates no store connection is available.
	ErrNotConnected = NewDomainError("KV-STORE-5030", "not connected")
)
