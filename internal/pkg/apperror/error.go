package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeConflict    = "CONFLICT"
	CodeNotFound    = "NOT_FOUND"
	CodeComputation = "COMPUTATION_ERROR"
	CodeInternal    = "INTERNAL_ERROR"
)

type AppError struct {
	Code       string // Error code (e.g., CONFLICT)
	Message    string // User-friendly message
	HTTPStatus int    // HTTP status code
	Err        error  // Wrapped original error (optional)
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError without wrapping
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap creates an AppError that wraps an existing error
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusUnprocessableEntity)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

// Computation reports a payroll run that could not produce a result from
// otherwise valid input.
func Computation(message string, err error) *AppError {
	return &AppError{Code: CodeComputation, Message: message, HTTPStatus: http.StatusInternalServerError, Err: err}
}

// Detailf derives an error of the same kind as base with a formatted message;
// errors.Is(result, base) still holds.
func Detailf(base *AppError, format string, args ...any) *AppError {
	return Wrap(base, base.Code, fmt.Sprintf(format, args...), base.HTTPStatus)
}

func codeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsValidation(err error) bool  { return codeOf(err) == CodeValidation }
func IsConflict(err error) bool    { return codeOf(err) == CodeConflict }
func IsNotFound(err error) bool    { return codeOf(err) == CodeNotFound }
func IsComputation(err error) bool { return codeOf(err) == CodeComputation }
