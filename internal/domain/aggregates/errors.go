package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies lifecycle failures so callers can render them distinctly.
type ErrorCode string

const (
	CodeUnauthenticated     ErrorCode = "unauthenticated"
	CodeForbidden           ErrorCode = "forbidden"
	CodeNotFound            ErrorCode = "not_found"
	CodeCapacityExceeded    ErrorCode = "capacity_exceeded"
	CodeConflict            ErrorCode = "conflict"
	CodeValidation          ErrorCode = "validation_failed"
	CodeCollaboratorFailure ErrorCode = "collaborator_failure"
	// CodeRetryable is a collaborator failure that is safe to retry
	// (serialization failure, deadlock, cancelled context).
	CodeRetryable ErrorCode = "retryable"
)

// FieldError names one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the canonical aggregate error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an aggregate error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// NewValidationError builds a validation_failed error carrying per-field details.
func NewValidationError(op, message string, fields []FieldError) error {
	return &Error{
		Code:    CodeValidation,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Fields:  fields,
	}
}

// Wrap annotates an existing error with aggregate error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or wrapped err) carries the given aggregate code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the aggregate error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// FieldsOf returns field-level validation details, if any.
func FieldsOf(err error) []FieldError {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return nil
	}
	return aggErr.Fields
}
