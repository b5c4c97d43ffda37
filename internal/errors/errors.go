package apperrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorFit      = 3   // Indicates a model failed to converge.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorDomain   = 5   // Indicates input data unusable for fitting.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// InvalidModelError is returned when a decline model name does not match
// any of the recognized families.
type InvalidModelError struct {
	// Name is the model name that was requested.
	Name string
	// Valid lists the accepted model names.
	Valid []string
}

// Error returns a message naming the rejected model and every valid one.
func (e InvalidModelError) Error() string {
	return fmt.Sprintf("invalid model %q: choose one of [%s]", e.Name, strings.Join(e.Valid, ", "))
}

// DomainError reports input data that cannot be fitted: an empty series,
// mismatched lengths, negative or unsorted values, or an all-zero scale
// that prevents normalization.
type DomainError struct {
	// Field names the offending input (e.g., "time", "rate").
	Field string
	// Message explains why the input is rejected.
	Message string
}

// Error returns a formatted message describing the domain violation.
func (e DomainError) Error() string {
	return fmt.Sprintf("domain error for %q: %s", e.Field, e.Message)
}

// NewDomainError creates a DomainError for the given field.
func NewDomainError(field, format string, a ...any) error {
	return DomainError{Field: field, Message: fmt.Sprintf(format, a...)}
}

// FitConvergenceError reports that the nonlinear least-squares optimizer
// could not produce a solution for a model. The optimizer's own failure is
// preserved as Cause.
type FitConvergenceError struct {
	// Model is the name of the decline model being fitted.
	Model string
	// Evaluations is the number of model evaluations spent before failing.
	Evaluations int
	// Cause is the underlying optimizer error.
	Cause error
}

// Error returns a formatted message describing the convergence failure.
func (e FitConvergenceError) Error() string {
	return fmt.Sprintf("%s fit did not converge after %d evaluations: %v", e.Model, e.Evaluations, e.Cause)
}

// Unwrap returns the underlying optimizer error.
func (e FitConvergenceError) Unwrap() error { return e.Cause }

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps an error to the process exit code reported by the CLI.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		configErr  ConfigError
		modelErr   InvalidModelError
		domainErr  DomainError
		convErr    FitConvergenceError
		invalidErr ValidationError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &configErr), errors.As(err, &modelErr), errors.As(err, &invalidErr):
		return ExitErrorConfig
	case errors.As(err, &domainErr):
		return ExitErrorDomain
	case errors.As(err, &convErr):
		return ExitErrorFit
	default:
		return ExitErrorGeneric
	}
}
