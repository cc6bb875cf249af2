// Package apperror defines the error shape shared by the SDK and the reference backend.
package apperror

import (
	"errors"
	"net/http"
)

type Code string

const (
	BadRequest Code = "BAD_REQUEST"
	NotFound   Code = "NOT_FOUND"
	Inactive   Code = "INACTIVE"
	Validation Code = "VALIDATION"
	Transport  Code = "TRANSPORT"
	Internal   Code = "INTERNAL"
	Conflict   Code = "CONFLICT"
)

// Sentinels for errors.Is. Matching compares codes only.
var (
	ErrNotFound   = New(NotFound, "not found")
	ErrInactive   = New(Inactive, "inactive")
	ErrValidation = New(Validation, "validation failed")
	ErrTransport  = New(Transport, "transport failure")
	ErrConflict   = New(Conflict, "conflict")
)

type AppError struct {
	code    Code
	message string
	status  int
	body    []byte
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

// NewTransport builds the normalized error surfaced by the request executor.
// A zero status becomes 500.
func NewTransport(message string, status int, body []byte) *AppError {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	code := Transport
	if status == http.StatusNotFound {
		code = NotFound
	}
	return &AppError{code: code, message: message, status: status, body: body}
}

func (e *AppError) Error() string   { return e.message }
func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }

// Body is the raw server payload, nil when the failure had no response.
func (e *AppError) Body() []byte { return e.body }

// Status is the HTTP status the error was received with, or the status the
// code maps to when the error originated locally.
func (e *AppError) Status() int {
	if e.status != 0 {
		return e.status
	}
	return e.HTTPStatus()
}

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case BadRequest, Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Inactive:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.code == t.code
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.code
	}
	return ""
}

// IsCode reports whether err carries an AppError with the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
