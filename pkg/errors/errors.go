package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"docforge/internal/domain"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeProcessing   ErrorType = "processing"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeNetwork      ErrorType = "network"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Details:    detail,
		StatusCode: http.StatusBadRequest,
	}
}

// NewProcessingError creates a new processing error
func NewProcessingError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProcessing,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// FromDomain maps a pipeline error onto its HTTP-facing form. Validation
// and style failures are the caller's fault, compilation failures are a
// semantically invalid document, missing resources are not found.
func FromDomain(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	var batchErr *domain.BatchItemError
	if stderrors.As(err, &batchErr) {
		inner := FromDomain(batchErr.Err)
		inner.Details = fmt.Sprintf("item %q: %s", batchErr.Filename, inner.Details)
		return inner
	}

	var validationErr *domain.SpecValidationError
	if stderrors.As(err, &validationErr) {
		return NewValidationError("invalid specification", validationErr.Error())
	}

	var styleErr *domain.StyleResolutionError
	if stderrors.As(err, &styleErr) {
		return NewValidationError("style resolution failed", styleErr.Error())
	}

	var compileErr *domain.CompilationError
	if stderrors.As(err, &compileErr) {
		return NewProcessingError(compileErr.Error(), compileErr)
	}

	var resourceErr *domain.ResourceError
	if stderrors.As(err, &resourceErr) {
		return NewNotFoundError(resourceErr.Error())
	}

	return NewInternalError("document generation failed", err)
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
