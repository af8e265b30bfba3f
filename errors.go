package haulage

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("haulage: not found")
	ErrAlreadyExists = errors.New("haulage: already exists")
	ErrInvalidInput  = errors.New("haulage: invalid input")

	// Entity errors
	ErrClientNotFound   = errors.New("haulage: client not found")
	ErrBillNotFound     = errors.New("haulage: bill not found")
	ErrSettingsNotFound = errors.New("haulage: company settings not found")

	// Rendering errors
	ErrUnsupportedFormat = errors.New("haulage: unsupported document format")

	// Concurrency errors
	ErrLockNotObtained = errors.New("haulage: client is locked by another writer")

	// Store errors
	ErrStoreClosed     = errors.New("haulage: store is closed")
	ErrMigrationFailed = errors.New("haulage: migration failed")
)

// ValidationError represents a validation failure with details. It matches
// ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("haulage: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "haulage: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("haulage: %d errors occurred: %v", len(e.Errors), e.Errors[0])
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrOrNil returns nil when nothing was collected, the single error when
// one was, and the MultiError otherwise.
func (e MultiError) ErrOrNil() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	default:
		return e
	}
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrBillNotFound) ||
		errors.Is(err, ErrSettingsNotFound)
}

// IsValidation returns true if the error was raised before any write
// because the input was rejected.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
