package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "decompiler.jobs")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found.
// The executable path is deliberately not checked here: the decompiler checks it on
// every call, because the file may appear or disappear between calls.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateDecompiler()...)
	errors = append(errors, c.validateCache()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateWatch()...)

	return errors
}

// validateDecompiler validates the DecompilerConfig
func (c *Config) validateDecompiler() []ValidationError {
	var errors []ValidationError

	if !IsValidBackend(c.Decompiler.Backend) {
		errors = append(errors, ValidationError{
			Field:   "decompiler.backend",
			Value:   c.Decompiler.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}

	const maxJobs = 64
	if c.Decompiler.Jobs < 1 {
		errors = append(errors, ValidationError{
			Field:   "decompiler.jobs",
			Value:   c.Decompiler.Jobs,
			Message: "must be at least 1",
		})
	}
	if c.Decompiler.Jobs > maxJobs {
		errors = append(errors, ValidationError{
			Field:   "decompiler.jobs",
			Value:   c.Decompiler.Jobs,
			Message: fmt.Sprintf("exceeds maximum of %d", maxJobs),
		})
	}

	if c.Decompiler.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "decompiler.timeout_seconds",
			Value:   c.Decompiler.TimeoutSeconds,
			Message: "must be non-negative (0 disables the timeout)",
		})
	}

	return errors
}

// validateCache validates the CacheConfig
func (c *Config) validateCache() []ValidationError {
	var errors []ValidationError

	if c.Cache.Reuse != "" && !slices.Contains(ValidReuseModes(), c.Cache.Reuse) {
		errors = append(errors, ValidationError{
			Field:   "cache.reuse",
			Value:   c.Cache.Reuse,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidReuseModes(), ", ")),
		})
	}

	if c.Cache.FingerprintEntries < 1 {
		errors = append(errors, ValidationError{
			Field:   "cache.fingerprint_entries",
			Value:   c.Cache.FingerprintEntries,
			Message: "must be at least 1",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateWatch validates the WatchConfig
func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	if c.Watch.Include == "" {
		errors = append(errors, ValidationError{
			Field:   "watch.include",
			Value:   c.Watch.Include,
			Message: "must not be empty",
		})
	} else if _, err := glob.Compile(c.Watch.Include, '/'); err != nil {
		errors = append(errors, ValidationError{
			Field:   "watch.include",
			Value:   c.Watch.Include,
			Message: fmt.Sprintf("invalid glob: %v", err),
		})
	}

	if c.Watch.DebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: "must be non-negative",
		})
	}

	return errors
}
