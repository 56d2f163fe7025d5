// Package domain defines the core types, interfaces, and errors for managing
// warehouse objects through Create/Update/Delete lifecycle events.
package domain

import "fmt"

// NotFoundError indicates a referenced object or credential does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates a malformed event or resource property.
// It is always raised before any statement is issued.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a change that would collide with a live object.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ServiceError indicates the SQL backend did not behave as expected, e.g. it
// accepted a statement without returning an identifier. Not retried here.
type ServiceError struct {
	Code    string // backend error code, if any
	Message string
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("service error (%s): %s", e.Code, e.Message)
	}
	return "service error: " + e.Message
}

// ExecutionError indicates a statement reached FAILED or ABORTED.
// Message is the backend's failure detail, passed through verbatim.
type ExecutionError struct {
	StatementID string
	Status      StatementStatus
	Message     string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("statement %s status was %s: %s", e.StatementID, e.Status, e.Message)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrService creates a ServiceError with a formatted message and no backend code.
func ErrService(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Message: fmt.Sprintf(format, args...)}
}
