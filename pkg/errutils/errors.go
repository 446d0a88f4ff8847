// Package errutils provides the error vocabulary shared by the registry builder.
// It defines sentinel errors for the failure classes the build distinguishes
// (per-archive, network and setup failures) and helpers for wrapping them with
// context. Callers compare with errors.Is against the sentinels below.
package errutils

import (
	"fmt"
)

// Common error types used throughout the application.
// Errors are grouped by their domain or functionality.
var (
	// Archive errors are recovered per archive: the archive is skipped and the
	// build continues.

	// ErrManifestNotFound is returned when an archive has no package/package.json.
	ErrManifestNotFound = fmt.Errorf("package manifest not found")

	// ErrManifestInvalid is returned when the manifest cannot be parsed or lacks
	// a name or version.
	ErrManifestInvalid = fmt.Errorf("invalid package manifest")

	// ErrExtractFailed is returned when an archive cannot be extracted.
	ErrExtractFailed = fmt.Errorf("archive extraction failed")

	// Network errors fail the hashing of a single file in remote mode.

	// ErrDownloadFailed is returned when a remote file cannot be fetched.
	ErrDownloadFailed = fmt.Errorf("download failed")

	// Setup errors abort the build.

	// ErrInvalidPath is returned when a file or directory path is invalid.
	ErrInvalidPath = fmt.Errorf("invalid path")

	// ErrEmptyPaths is returned when source or destination paths are empty in file operations.
	ErrEmptyPaths = fmt.Errorf("source and destination paths cannot be empty")

	// ErrSourceDirectory is returned when the packages directory cannot be read.
	ErrSourceDirectory = fmt.Errorf("cannot read packages directory")

	// ErrOutputDirectory is returned when the output directory cannot be prepared.
	ErrOutputDirectory = fmt.Errorf("cannot prepare output directory")

	// ErrAlreadyExists is returned when a file would be overwritten without --force.
	ErrAlreadyExists = fmt.Errorf("resource already exists")

	// Config errors are related to configuration file operations and validation.
	ErrEmptyConfigPath = fmt.Errorf(
		"config file path cannot be empty") // When config file path is empty

	ErrInvalidConfigPath = fmt.Errorf(
		"invalid config file path") // When provided config file path is invalid

	ErrConfigParse = fmt.Errorf(
		"failed to parse config") // When config file cannot be parsed

	// ErrConfigValidation is returned when configuration values fail validation.
	ErrConfigValidation = fmt.Errorf("invalid configuration")

	ErrConfigEncode = fmt.Errorf(
		"failed to encode config") // When config cannot be encoded

	ErrConfigDirectory = fmt.Errorf(
		"failed to create config directory") // When config dir cannot be created

	ErrConfigFileCreate = fmt.Errorf(
		"failed to create config file") // When config file cannot be created

	// ErrConfigFileExists is returned when attempting to create a configuration file that already exists.
	ErrConfigFileExists = fmt.Errorf("configuration file already exists (use --force to overwrite)")

	// ErrConfigFileRename is returned when renaming the temporary config file fails.
	ErrConfigFileRename = fmt.Errorf("failed to rename temporary config file")

	// ErrConfigMarshal is returned when marshaling the config to YAML fails.
	ErrConfigMarshal = fmt.Errorf("failed to marshal config to YAML")

	// ErrBaseURLEmpty is returned when no registry base URL is configured.
	ErrBaseURLEmpty = fmt.Errorf("registry base_url cannot be empty")

	// ErrBaseURLInvalid is returned when the registry base URL does not parse as an absolute URL.
	ErrBaseURLInvalid = fmt.Errorf("registry base_url must be an absolute http(s) URL")

	// ErrHTTPTimeoutNegative is returned when HTTP timeout is set to a negative value.
	ErrHTTPTimeoutNegative = fmt.Errorf("http_timeout cannot be negative")

	// ErrJobsInvalid is returned when build.jobs is less than 1.
	ErrJobsInvalid = fmt.Errorf("build.jobs must be at least 1")

	// ErrInvalidLogLevel is returned when an invalid log level is specified.
	ErrInvalidLogLevel = fmt.Errorf("invalid log level")

	// ErrInvalidLogFormat is returned when settings.log_format is neither text nor json.
	ErrInvalidLogFormat = fmt.Errorf("invalid log format")
)

// Wrap wraps an error with additional context.
// This is useful for adding context to errors as they propagate up the call stack.
// If the error is nil, Wrap returns nil.
//
// Example:
//
//	if err := someOperation(); err != nil {
//	    return errutils.Wrap(err, "failed to perform operation")
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
// If the error is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: error, warn, info, debug", ErrInvalidLogLevel, level)
}

// ErrBaseURLInvalidWithValue is a helper to create a wrapped error with the rejected URL.
func ErrBaseURLInvalidWithValue(value string) error {
	return fmt.Errorf("%w: %q", ErrBaseURLInvalid, value)
}
