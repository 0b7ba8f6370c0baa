// Package errors provides standardized error handling for the dispatch pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Request validation failures. Never retried: a structurally invalid
	// request cannot become valid on a second attempt.
	ErrCodeRequestTooLarge   ErrorCode = "REQUEST_TOO_LARGE"
	ErrCodeTooManyRecipients ErrorCode = "TOO_MANY_RECIPIENTS"
	ErrCodeInvalidAddress    ErrorCode = "INVALID_ADDRESS"
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"

	// Template resolution and rendering failures, also terminal.
	ErrCodeTemplateUnresolved   ErrorCode = "TEMPLATE_UNRESOLVED"
	ErrCodeTemplateCompileError ErrorCode = "TEMPLATE_COMPILE_ERROR"

	// Delivery failures. The transport call is the only retried step.
	ErrCodeTransportError ErrorCode = "TRANSPORT_ERROR"

	// Status write-back failure: logged, never masks the primary outcome.
	ErrCodeStatusWriteError ErrorCode = "STATUS_WRITE_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from err, or UNKNOWN_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return "UNKNOWN_ERROR"
}

// IsValidation reports whether err belongs to the INVALID_REQUEST family.
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case ErrCodeRequestTooLarge, ErrCodeTooManyRecipients, ErrCodeInvalidAddress, ErrCodeInvalidRequest:
		return true
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewRequestTooLargeError creates a non-retryable size-limit error.
func NewRequestTooLargeError(sizeKB, limitKB int) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestTooLarge,
		Message:   fmt.Sprintf("Document size exceeds limit of %dKB", limitKB),
		Details:   fmt.Sprintf("sizeKB: %d, limitKB: %d", sizeKB, limitKB),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTooManyRecipientsError creates a non-retryable recipient-count error.
func NewTooManyRecipientsError(count, limit int) *StandardError {
	return &StandardError{
		Code:      ErrCodeTooManyRecipients,
		Message:   fmt.Sprintf("Maximum number of recipients (%d) exceeded", limit),
		Details:   fmt.Sprintf("count: %d, limit: %d", count, limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidAddressError creates a non-retryable address-syntax error.
func NewInvalidAddressError(address string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidAddress,
		Message:   "Invalid recipient email address",
		Details:   fmt.Sprintf("address: %s", address),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable request-shape error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateUnresolvedError creates a non-retryable template lookup error.
func NewTemplateUnresolvedError(templateName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateUnresolved,
		Message:   "No template variant and no literal subject/text/html to fall back to",
		Details:   fmt.Sprintf("templateName: %s", templateName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateCompileError creates a non-retryable template compile error.
func NewTemplateCompileError(field string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateCompileError,
		Message:   "Template compilation failed",
		Details:   fmt.Sprintf("field: %s, error: %s", field, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportError creates a retryable delivery error.
func NewTransportError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportError,
		Message:   "Email delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStatusWriteError creates a non-retryable write-back error.
func NewStatusWriteError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStatusWriteError,
		Message:   "Status write-back failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
