// Package errors provides centralized error definitions and error handling utilities
// for smali2java. It defines the decompile error taxonomy, error constructors with
// context builders, and classification helpers.
//
// # Error Types
//
// Every failure of a decompile call is one of:
//   - InvalidInputError: the input is not a recognizable single-class smali file
//   - ConfigurationError: the backend executable is unset or not a regular file
//   - ToolExecutionError: the external tool reported diagnostics on stderr
//   - OutputMissingError: the tool exited cleanly but produced no output file
//   - ExecutionError: the tool could not be spawned at all
//   - TimeoutError: the tool exceeded the configured timeout
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewConfigurationError("jadx", "executable path is not configured", errors.ErrNotConfigured).
//	    WithKey("decompiler.jadx.path")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrToolFailed) { ... }
//
//	var toolErr *errors.ToolExecutionError
//	if errors.As(err, &toolErr) {
//	    fmt.Println(toolErr.Stderr)
//	}
//
// # Error Classification
//
// None of these errors is retried by the core; every message is written to be
// shown to an end user as is. IsRetryable exists so callers can apply their own
// policy.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Input-related sentinel errors
var (
	// ErrInvalidInput indicates the input file is not a single smali class definition.
	ErrInvalidInput = New("invalid smali file")
)

// Configuration-related sentinel errors
var (
	// ErrNotConfigured indicates the backend executable path is not set.
	ErrNotConfigured = New("executable path not configured")
	// ErrInvalidExecutable indicates the configured path is missing or not a regular file.
	ErrInvalidExecutable = New("invalid executable path")
	// ErrUnknownBackend indicates a backend name outside the supported set.
	ErrUnknownBackend = New("unknown decompiler backend")
)

// Tool-related sentinel errors
var (
	// ErrToolFailed indicates the external tool reported diagnostics.
	ErrToolFailed = New("decompiler reported errors")
	// ErrOutputMissing indicates the tool did not produce the expected file.
	ErrOutputMissing = New("decompiled output missing")
	// ErrExecutionFailed indicates the tool could not be started.
	ErrExecutionFailed = New("failed to run decompiler")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that the caller stopped waiting for a result.
	ErrCanceled = New("operation canceled")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// DecompileError is the base interface for all errors in this package.
// It extends the standard error interface with additional methods for
// error handling and classification.
type DecompileError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func newBase(message string, cause error) baseError {
	return baseError{
		message:    message,
		cause:      cause,
		severity:   SeverityError,
		retryable:  false,
		userFacing: true,
	}
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "<prefix> [k=v, ...]: message[: cause]".
func (e *baseError) format(prefix string, parts []string) string {
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Decompile Errors
// -----------------------------------------------------------------------------

// InvalidInputError reports an input file that is not a recognizable
// single-class smali source unit.
//
// Example:
//
//	err := errors.NewInvalidInputError("missing .class directive", nil).WithPath("/tmp/Foo.smali")
//	fmt.Println(err) // "invalid input [path=/tmp/Foo.smali]: missing .class directive"
type InvalidInputError struct {
	baseError
	Path string
}

// NewInvalidInputError creates a new InvalidInputError.
func NewInvalidInputError(message string, cause error) *InvalidInputError {
	return &InvalidInputError{baseError: newBase(message, cause)}
}

// WithPath adds the input path to the error context.
func (e *InvalidInputError) WithPath(path string) *InvalidInputError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *InvalidInputError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("invalid input", parts)
}

// Is checks if this error matches the target.
func (e *InvalidInputError) Is(target error) bool {
	if _, ok := target.(*InvalidInputError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// ConfigurationError reports a backend whose executable is unset or does not
// reference an existing regular file. The user must fix configuration before
// retrying.
//
// Example:
//
//	err := errors.NewConfigurationError("jadx", "not a regular file", errors.ErrInvalidExecutable).
//	    WithKey("decompiler.jadx.path").WithPath("/opt/jadx")
type ConfigurationError struct {
	baseError
	Backend string
	Key     string
	Path    string
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(backend, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: newBase(message, cause),
		Backend:   backend,
	}
}

// WithKey adds the configuration key the user should change.
func (e *ConfigurationError) WithKey(key string) *ConfigurationError {
	e.Key = key
	return e
}

// WithPath adds the offending executable path.
func (e *ConfigurationError) WithPath(path string) *ConfigurationError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *ConfigurationError) Error() string {
	var parts []string
	if e.Backend != "" {
		parts = append(parts, fmt.Sprintf("backend=%s", e.Backend))
	}
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%s", e.Key))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("configuration error", parts)
}

// Is checks if this error matches the target.
func (e *ConfigurationError) Is(target error) bool {
	if _, ok := target.(*ConfigurationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ToolExecutionError reports diagnostics from the external tool. Both captured
// streams are kept so callers can show them.
//
// Example:
//
//	err := errors.NewToolExecutionError("jadx", 0).WithOutput(stdout, stderr)
type ToolExecutionError struct {
	baseError
	Backend  string
	ExitCode int
	Stdout   string
	Stderr   string
}

// NewToolExecutionError creates a new ToolExecutionError.
func NewToolExecutionError(backend string, exitCode int) *ToolExecutionError {
	return &ToolExecutionError{
		baseError: newBase("see tool output for details", ErrToolFailed),
		Backend:   backend,
		ExitCode:  exitCode,
	}
}

// WithOutput attaches the captured stdout and stderr.
func (e *ToolExecutionError) WithOutput(stdout, stderr string) *ToolExecutionError {
	e.Stdout = stdout
	e.Stderr = stderr
	return e
}

// Error returns the formatted error message.
func (e *ToolExecutionError) Error() string {
	var parts []string
	if e.Backend != "" {
		parts = append(parts, fmt.Sprintf("backend=%s", e.Backend))
	}
	parts = append(parts, fmt.Sprintf("exit=%d", e.ExitCode))
	return e.format("decompile failed", parts)
}

// Is checks if this error matches the target.
func (e *ToolExecutionError) Is(target error) bool {
	if _, ok := target.(*ToolExecutionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// OutputMissingError reports a clean tool exit that did not produce the
// promised file.
//
// Example:
//
//	err := errors.NewOutputMissingError("jadx", "/out/com/example/Foo.java", statErr)
type OutputMissingError struct {
	baseError
	Backend      string
	ClassName    string
	ExpectedPath string
}

// NewOutputMissingError creates a new OutputMissingError.
func NewOutputMissingError(backend, expectedPath string, cause error) *OutputMissingError {
	if cause == nil {
		cause = ErrOutputMissing
	} else {
		cause = Join(ErrOutputMissing, cause)
	}
	return &OutputMissingError{
		baseError:    newBase(fmt.Sprintf("expected output not found at %s", expectedPath), cause),
		Backend:      backend,
		ExpectedPath: expectedPath,
	}
}

// WithClassName adds the class whose output is missing.
func (e *OutputMissingError) WithClassName(name string) *OutputMissingError {
	e.ClassName = name
	return e
}

// Error returns the formatted error message.
func (e *OutputMissingError) Error() string {
	var parts []string
	if e.Backend != "" {
		parts = append(parts, fmt.Sprintf("backend=%s", e.Backend))
	}
	if e.ClassName != "" {
		parts = append(parts, fmt.Sprintf("class=%s", e.ClassName))
	}
	// The cause is the sentinel join; the message already names the path.
	prefix := "output missing"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *OutputMissingError) Is(target error) bool {
	if _, ok := target.(*OutputMissingError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ExecutionError reports a process that could not be spawned (executable not
// runnable, permission denied). It carries the OS error as its cause.
type ExecutionError struct {
	baseError
	Backend    string
	Executable string
}

// NewExecutionError creates a new ExecutionError.
func NewExecutionError(backend, executable string, cause error) *ExecutionError {
	return &ExecutionError{
		baseError:  newBase(ErrExecutionFailed.Error(), cause),
		Backend:    backend,
		Executable: executable,
	}
}

// Error returns the formatted error message.
func (e *ExecutionError) Error() string {
	var parts []string
	if e.Backend != "" {
		parts = append(parts, fmt.Sprintf("backend=%s", e.Backend))
	}
	if e.Executable != "" {
		parts = append(parts, fmt.Sprintf("executable=%s", e.Executable))
	}
	return e.format("execution error", parts)
}

// Is checks if this error matches the target.
func (e *ExecutionError) Is(target error) bool {
	if _, ok := target.(*ExecutionError); ok {
		return true
	}
	if target == ErrExecutionFailed {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("jadx com/example/Foo", 30*time.Second)
//	fmt.Println(err) // "timeout error: jadx com/example/Foo (timeout: 30s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if target == ErrTimeout {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error implements DecompileError and reports
// itself as retryable. Nothing in the decompile path does; the core leaves
// retry decisions to the caller.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var decompileErr DecompileError
	if As(err, &decompileErr) {
		return decompileErr.IsRetryable()
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    fmt.Fprintln(os.Stderr, err)
//	} else {
//	    fmt.Fprintln(os.Stderr, "an internal error occurred")
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var decompileErr DecompileError
	if As(err, &decompileErr) {
		return decompileErr.IsUserFacing()
	}

	return Is(err, ErrCanceled) || Is(err, ErrUnknownBackend)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement DecompileError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var decompileErr DecompileError
	if As(err, &decompileErr) {
		return decompileErr.Severity()
	}

	return SeverityError
}

// IsDecompileError returns true if err is one of the typed decompile failures.
func IsDecompileError(err error) bool {
	if err == nil {
		return false
	}

	var invalid *InvalidInputError
	var cfg *ConfigurationError
	var tool *ToolExecutionError
	var missing *OutputMissingError
	var exec *ExecutionError
	var timeout *TimeoutError

	return As(err, &invalid) || As(err, &cfg) || As(err, &tool) ||
		As(err, &missing) || As(err, &exec) || As(err, &timeout)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
