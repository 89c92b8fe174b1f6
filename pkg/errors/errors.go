package errors

import (
	"errors"
	"net/http"
)

// AppError is an error that carries an HTTP status and a client-safe message.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

var (
	ErrBadRequest     = New("BAD_REQUEST", "Bad request", http.StatusBadRequest)
	ErrUnauthorized   = New("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrForbidden      = New("FORBIDDEN", "You do not have permission to perform this action", http.StatusForbidden)
	ErrNotFound       = New("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrConflict       = New("CONFLICT", "Resource already exists", http.StatusConflict)
	ErrInternalServer = New("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
)

// New constructs an AppError.
func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: status}
}

// NewBadRequest returns a 400 error with the supplied message.
func NewBadRequest(message string) *AppError {
	return New(ErrBadRequest.Code, message, http.StatusBadRequest)
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) || other == nil || e == nil {
		return false
	}
	return e.Code == other.Code
}

// WithInternal returns a copy of the error wrapping the underlying cause.
func (e *AppError) WithInternal(err error) *AppError {
	cp := *e
	cp.Internal = err
	return &cp
}

// FromError converts any error into an AppError, defaulting to an internal server error.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}
