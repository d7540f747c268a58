// Package errors provides custom error types for the wifisync system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As are aliases for the standard library equivalents so callers
// don't need a second errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors for the wifisync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNetworkNotFound indicates that no WiFi network with the requested
	// SSID exists on the controller
	ErrNetworkNotFound = errors.New("network not found")

	// ErrControllerUnavailable indicates that the controller could not be
	// reached or refused the session
	ErrControllerUnavailable = errors.New("controller unavailable")

	// ErrNotAuthenticated indicates that a stored credential is missing or
	// was rejected by the remote service
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// InvalidMACError reports a value that does not parse as a MAC address.
type InvalidMACError struct {
	Value   string
	Message string
}

// Error implements the error interface
func (e *InvalidMACError) Error() string {
	return fmt.Sprintf("invalid MAC address %q: %s", e.Value, e.Message)
}

// Is implements errors.Is support
func (e *InvalidMACError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MalformedEntryError reports a mirror-file line that does not match the
// MAC entry grammar. It carries the offending line and its 1-based number.
type MalformedEntryError struct {
	Line    string
	Number  int
	Message string
}

// Error implements the error interface
func (e *MalformedEntryError) Error() string {
	if e.Number > 0 {
		return fmt.Sprintf("malformed entry at line %d: %s (%q)", e.Number, e.Message, e.Line)
	}
	return fmt.Sprintf("malformed entry: %s (%q)", e.Message, e.Line)
}

// Is implements errors.Is support
func (e *MalformedEntryError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewMalformedEntryError creates a new MalformedEntryError
func NewMalformedEntryError(line string, number int, message string) *MalformedEntryError {
	return &MalformedEntryError{Line: line, Number: number, Message: message}
}

// MalformedTaskError reports a task whose fields do not decode into an
// ADD/DELETE operation. The task is skipped, not the batch.
type MalformedTaskError struct {
	TaskID  string
	Field   string
	Message string
}

// Error implements the error interface
func (e *MalformedTaskError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed task %s: field %s: %s", e.TaskID, e.Field, e.Message)
	}
	return fmt.Sprintf("malformed task %s: %s", e.TaskID, e.Message)
}

// Is implements errors.Is support
func (e *MalformedTaskError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewMalformedTaskError creates a new MalformedTaskError
func NewMalformedTaskError(taskID, field, message string) *MalformedTaskError {
	return &MalformedTaskError{TaskID: taskID, Field: field, Message: message}
}

// ControllerError represents a transport, authentication, or protocol
// failure while talking to the WiFi controller.
type ControllerError struct {
	Op         string // "login", "get filter", "set filter", ...
	Network    string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *ControllerError) Error() string {
	switch {
	case e.Network != "" && e.StatusCode != 0:
		return fmt.Sprintf("controller error during %s for %q (status %d): %s", e.Op, e.Network, e.StatusCode, e.Message)
	case e.Network != "":
		return fmt.Sprintf("controller error during %s for %q: %s", e.Op, e.Network, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("controller error during %s (status %d): %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("controller error during %s: %s", e.Op, e.Message)
	}
}

// Unwrap implements errors.Unwrap
func (e *ControllerError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ControllerError) Is(target error) bool {
	if e.StatusCode == 401 || e.StatusCode == 403 {
		return target == ErrNotAuthenticated
	}
	if e.StatusCode >= 500 {
		return target == ErrControllerUnavailable
	}
	return false
}

// NewControllerError creates a new ControllerError
func NewControllerError(op, network string, statusCode int, message string, err error) *ControllerError {
	return &ControllerError{Op: op, Network: network, StatusCode: statusCode, Message: message, Err: err}
}

// MirrorWriteError represents a failure writing the mirror file. Mirror
// writes are best-effort; callers log this error but never fail a task on it.
type MirrorWriteError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *MirrorWriteError) Error() string {
	return fmt.Sprintf("mirror write failed for %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *MirrorWriteError) Unwrap() error {
	return e.Err
}

// NewMirrorWriteError creates a new MirrorWriteError
func NewMirrorWriteError(path string, err error) *MirrorWriteError {
	return &MirrorWriteError{Path: path, Err: err}
}

// TaskCompletionError represents a failure to mark a task complete on the
// task source. The underlying controller and mirror changes are not rolled
// back; a retried task converges because add/remove are idempotent.
type TaskCompletionError struct {
	TaskID string
	Err    error
}

// Error implements the error interface
func (e *TaskCompletionError) Error() string {
	return fmt.Sprintf("failed to mark task %s complete: %v", e.TaskID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *TaskCompletionError) Unwrap() error {
	return e.Err
}

// NewTaskCompletionError creates a new TaskCompletionError
func NewTaskCompletionError(taskID string, err error) *TaskCompletionError {
	return &TaskCompletionError{TaskID: taskID, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Err: err}
}

// NotificationError represents a failure delivering a notification.
// Delivery failures never affect task outcomes already computed.
type NotificationError struct {
	Sink string
	Err  error
}

// Error implements the error interface
func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification to %s failed: %v", e.Sink, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *NotificationError) Unwrap() error {
	return e.Err
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMalformedEntry checks if an error is a mirror-file parse failure
func IsMalformedEntry(err error) bool {
	var target *MalformedEntryError
	return errors.As(err, &target)
}

// IsMalformedTask checks if an error is a task decode failure
func IsMalformedTask(err error) bool {
	var target *MalformedTaskError
	return errors.As(err, &target)
}

// IsControllerError checks if an error came from the controller transport
func IsControllerError(err error) bool {
	var target *ControllerError
	return errors.As(err, &target)
}

// IsMirrorWriteError checks if an error is a mirror-file write failure
func IsMirrorWriteError(err error) bool {
	var target *MirrorWriteError
	return errors.As(err, &target)
}

// IsTaskCompletionError checks if an error is a task completion failure
func IsTaskCompletionError(err error) bool {
	var target *TaskCompletionError
	return errors.As(err, &target)
}

// IsNotAuthenticated checks if an error indicates a rejected credential
func IsNotAuthenticated(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}

// WrapIO wraps an error from an I/O operation
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapController wraps an error from a controller operation
func WrapController(op, network string, err error) error {
	if err == nil {
		return nil
	}
	return &ControllerError{Op: op, Network: network, Message: err.Error(), Err: err}
}
