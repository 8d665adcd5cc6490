package apierr

import (
	"errors"
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

func NotFound(what string) *Error {
	return New(http.StatusNotFound, "not_found", fmt.Errorf("%s not found", what))
}

func InvalidTransition(from, to string) *Error {
	return New(http.StatusConflict, "invalid_transition", fmt.Errorf("cannot transition report from %s to %s", from, to))
}

func RateLimited(msg string) *Error {
	return New(http.StatusTooManyRequests, "rate_limited", errors.New(msg))
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, "unauthorized", err)
}

// StatusOf maps any error to an HTTP status, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf extracts the machine-readable code, empty when err is not an *Error.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
