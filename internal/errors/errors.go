// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInputValidation  = errors.New("input validation failed")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrTradeNotFound    = errors.New("trade not found")
	ErrStorageParse     = errors.New("stored data could not be parsed")
	ErrKeyNotFound      = errors.New("key not found")
	ErrConfigInvalid    = errors.New("invalid configuration")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// InvalidOperationError is returned when an operation is not allowed in the current state.
type InvalidOperationError struct {
	Operation string
	Reason    string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation [%s]: %s", e.Operation, e.Reason)
}

func (e *InvalidOperationError) Unwrap() error {
	return ErrInvalidOperation
}

// NewInvalidOperationError creates a new InvalidOperationError.
func NewInvalidOperationError(operation, reason string) *InvalidOperationError {
	return &InvalidOperationError{
		Operation: operation,
		Reason:    reason,
	}
}

// NotFoundError represents a lookup that matched nothing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrTradeNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// StorageParseError reports a persisted blob that could not be decoded.
// It is recoverable: the caller continues with an empty ledger.
type StorageParseError struct {
	Key string
	Err error
}

func (e *StorageParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage parse error [%s]: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("storage parse error [%s]", e.Key)
}

func (e *StorageParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStorageParse}
	}
	return []error{ErrStorageParse, e.Err}
}

// NewStorageParseError creates a new StorageParseError.
func NewStorageParseError(key string, err error) *StorageParseError {
	return &StorageParseError{Key: key, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
