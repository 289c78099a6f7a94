// Package apperr carries the error taxonomy shared by the checkout and
// shipment flows. Services return *Error values; the HTTP layer maps them to
// status codes and response bodies.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	Unauthenticated    Code = "unauthenticated"
	InvalidArgument    Code = "invalid_argument"
	PermissionDenied   Code = "permission_denied"
	NotFound           Code = "not_found"
	FailedPrecondition Code = "failed_precondition"
	Upstream           Code = "upstream"
	Internal           Code = "internal"
)

type Error struct {
	Code    Code
	Message string
	// Details names the offending fields for invalid-argument failures,
	// e.g. {"state": true} when the shipping state is missing.
	Details map[string]bool
	// UpstreamStatus/UpstreamBody hold the raw gateway or carrier response
	// for Upstream errors so the HTTP layer can pass them through.
	UpstreamStatus int
	UpstreamBody   string

	err error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, err: err}
}

// WithDetails attaches a field map to an invalid-argument error.
func (e *Error) WithDetails(details map[string]bool) *Error {
	e.Details = details
	return e
}

// NewUpstream records a non-2xx response from the gateway or carrier,
// preserving its status code and body verbatim.
func NewUpstream(status int, body, message string) *Error {
	return &Error{Code: Upstream, Message: message, UpstreamStatus: status, UpstreamBody: body}
}

// CodeOf extracts the taxonomy code from an error chain, defaulting to
// Internal for anything untyped.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return Internal
}

// HTTPStatus maps the error to a response status. Upstream errors pass their
// own status through when it is a valid 4xx/5xx, otherwise 500.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument:
		return http.StatusBadRequest
	case PermissionDenied:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case FailedPrecondition:
		return http.StatusBadRequest
	case Upstream:
		if e.UpstreamStatus >= 400 && e.UpstreamStatus < 600 {
			return e.UpstreamStatus
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
