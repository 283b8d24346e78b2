package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.max_size_mb")
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

// shellMetacharacters may not appear in a reviewer prefix: the filter
// rejects any command containing one, so such a prefix could never match.
const shellMetacharacters = ";|&`$><"

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidWavesFormats returns the list of valid waves output formats
func ValidWavesFormats() []string {
	return []string{"json", "yaml"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateApproval()...)
	errors = append(errors, c.validateReviewer()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateWatch()...)

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

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	if strings.ContainsRune(c.Logging.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "logging.dir",
			Value:   c.Logging.Dir,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateApproval validates the ApprovalConfig
func (c *Config) validateApproval() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Approval.StateDir) == "" {
		errors = append(errors, ValidationError{
			Field:   "approval.state_dir",
			Value:   c.Approval.StateDir,
			Message: "must not be empty",
		})
	} else if strings.ContainsRune(c.Approval.StateDir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "approval.state_dir",
			Value:   c.Approval.StateDir,
			Message: "path contains invalid null character",
		})
	}

	if c.Approval.TeamPrefix == "" {
		errors = append(errors, ValidationError{
			Field:   "approval.team_prefix",
			Value:   c.Approval.TeamPrefix,
			Message: "must not be empty",
		})
	}

	return errors
}

// validateReviewer validates the ReviewerConfig
func (c *Config) validateReviewer() []ValidationError {
	var errors []ValidationError

	if len(c.Reviewer.AllowedPrefixes) == 0 {
		errors = append(errors, ValidationError{
			Field:   "reviewer.allowed_prefixes",
			Value:   c.Reviewer.AllowedPrefixes,
			Message: "must list at least one command prefix",
		})
	}

	for i, prefix := range c.Reviewer.AllowedPrefixes {
		field := fmt.Sprintf("reviewer.allowed_prefixes[%d]", i)
		switch {
		case strings.TrimSpace(prefix) == "":
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   prefix,
				Message: "must not be blank",
			})
		case strings.ContainsAny(prefix, shellMetacharacters):
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   prefix,
				Message: fmt.Sprintf("must not contain any of %q", shellMetacharacters),
			})
		}
	}

	return errors
}

// validateOutput validates the OutputConfig
func (c *Config) validateOutput() []ValidationError {
	if slices.Contains(ValidWavesFormats(), c.Output.WavesFormat) {
		return nil
	}
	return []ValidationError{{
		Field:   "output.waves_format",
		Value:   c.Output.WavesFormat,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidWavesFormats(), ", ")),
	}}
}

// validateWatch validates the WatchConfig
func (c *Config) validateWatch() []ValidationError {
	const maxDebounceMs = 60000
	if c.Watch.DebounceMs >= 0 && c.Watch.DebounceMs <= maxDebounceMs {
		return nil
	}
	return []ValidationError{{
		Field:   "watch.debounce_ms",
		Value:   c.Watch.DebounceMs,
		Message: fmt.Sprintf("must be between 0 and %d", maxDebounceMs),
	}}
}
