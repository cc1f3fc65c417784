package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration and lookup failures. Scoring itself is
// total over its input domain and returns no errors; only construction-time
// validation and the surrounding storage layers fail.
var (
	ErrNotFound          = errors.New("not found")
	ErrMissingThresholds = errors.New("missing required threshold block")
	ErrInvalidThresholds = errors.New("invalid threshold configuration")
)

// ValidationError represents a request-level input validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}
