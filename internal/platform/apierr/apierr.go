package apierr

import (
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// StatusForCode maps a lifecycle error code onto an HTTP status.
// Unknown or empty codes are server errors.
func StatusForCode(code string) int {
	switch code {
	case "unauthenticated":
		return http.StatusUnauthorized
	case "forbidden":
		return http.StatusForbidden
	case "not_found":
		return http.StatusNotFound
	case "capacity_exceeded", "conflict":
		return http.StatusConflict
	case "validation_failed":
		return http.StatusUnprocessableEntity
	case "retryable":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
