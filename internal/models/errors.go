package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents invalid request input (400)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents resource not found errors (404)
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeModelNotLoaded represents use of the local embedding provider before load (409)
	ErrorTypeModelNotLoaded ErrorType = "model_not_loaded"
	// ErrorTypeProvider represents language-model or embedding transport failures (502)
	ErrorTypeProvider ErrorType = "provider"
	// ErrorTypeAnalysisFailed represents total sub-operation failure (502)
	ErrorTypeAnalysisFailed ErrorType = "analysis_failed"
	// ErrorTypeCircuitBreaker represents a tripped provider breaker (503)
	ErrorTypeCircuitBreaker ErrorType = "circuit_breaker"
	// ErrorTypeTimeout represents timeout errors (504)
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeInternal represents internal server errors (500)
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for the error
func (e *AppError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeModelNotLoaded:
		return http.StatusConflict
	case ErrorTypeProvider, ErrorTypeAnalysisFailed:
		return http.StatusBadGateway
	case ErrorTypeCircuitBreaker:
		return http.StatusServiceUnavailable
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Cause:   cause,
	}
}

// NewProviderError creates a provider transport error
func NewProviderError(provider, message string, cause error) *AppError {
	return &AppError{
		Type:      ErrorTypeProvider,
		Message:   fmt.Sprintf("provider %s: %s", provider, message),
		Retryable: true,
		Cause:     cause,
	}
}

// NewModelNotLoadedError signals the local embedding provider was used before load
func NewModelNotLoadedError(provider string) *AppError {
	return &AppError{
		Type:    ErrorTypeModelNotLoaded,
		Message: fmt.Sprintf("embedding model not loaded for provider %s", provider),
	}
}

// NewAnalysisFailedError signals that every sub-operation of an analysis failed
func NewAnalysisFailedError(word string, cause error) *AppError {
	return &AppError{
		Type:      ErrorTypeAnalysisFailed,
		Message:   fmt.Sprintf("analysis failed for %q: all sub-operations failed", word),
		Retryable: true,
		Cause:     cause,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Cause:   cause,
	}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}
