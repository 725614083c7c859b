package common

import (
	"fmt"
	"net/http"
)

// AppError is the application error type carried across service boundaries.
// StatusCode drives the HTTP mapping; Err keeps the underlying cause for logs.
type AppError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewBadRequestError creates a 400-level application error
func NewBadRequestError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message, Err: err}
}

// NewNotFoundError creates a 404-level application error
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message, Err: err}
}

// NewConflictError creates a 409-level application error
func NewConflictError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Message: message, Err: err}
}

// NewInternalServerError creates a 500-level application error
func NewInternalServerError(message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message}
}

// NewServiceUnavailableError creates a 503-level application error
func NewServiceUnavailableError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusServiceUnavailable, Message: message, Err: err}
}
