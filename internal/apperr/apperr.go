// Package apperr defines the application error taxonomy.  Handlers translate
// these errors into a structured JSON body {status, code, message} with an
// HTTP status derived from the error kind, so the repository and domain
// layers never deal with HTTP directly.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the failure modes the API surfaces.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindPermissionDenied
	KindInvalidState
	KindInsufficientFunds
	KindPaymentMismatch
	KindGatewayUnavailable
)

// Error carries a kind for HTTP mapping, a stable machine-readable code and
// a human-readable message.  Err optionally wraps the underlying cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error without an underlying cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap constructs an Error around an underlying cause.
func Wrap(err error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Internal wraps an unexpected failure.  The message shown to clients is
// generic; the cause is preserved for logging.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "internal server error", Err: err}
}

// HTTPStatus maps an error kind to its HTTP status code.  Unknown errors
// (anything that is not an *Error) map to 500.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindInvalidInput, KindPaymentMismatch:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindInvalidState:
		return http.StatusConflict
	case KindInsufficientFunds:
		return http.StatusPaymentRequired
	case KindGatewayUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// From returns the *Error inside err, or an Internal error wrapping it when
// err carries no taxonomy information.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
