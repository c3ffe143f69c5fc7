package domain

import (
	"fmt"
)

// DiagnosisError represents a standardized service-level error
type DiagnosisError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DiagnosisError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *DiagnosisError) Unwrap() error {
	return e.Err
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput   = "INVALID_INPUT"
	ErrConfiguration  = "CONFIGURATION_ERROR"
	ErrNoActivation   = "NO_ACTIVATION"
	ErrInternalServer = "INTERNAL_ERROR"
	ErrValidation     = "VALIDATION_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewDiagnosisError creates a new DiagnosisError wrapping cause
func NewDiagnosisError(code, message string, cause error) *DiagnosisError {
	e := &DiagnosisError{
		Code:    code,
		Message: message,
		Err:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
