package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig validates the configuration and returns a list of validation errors.
// An empty slice indicates the configuration is valid.
func ValidateConfig(config *Config) []error {
	var errs []error

	errs = append(errs, validateStoreConfig(&config.Store)...)
	errs = append(errs, validateLogConfig(&config.Logging)...)
	errs = append(errs, validateTraceConfig(&config.Trace)...)

	return errs
}

// validateStoreConfig validates storage configuration.
func validateStoreConfig(config *StoreConfig) []error {
	var errs []error

	if config.PageSize < 16 || config.PageSize&(config.PageSize-1) != 0 {
		errs = append(errs, ValidationError{
			Field:   "store.pageSize",
			Message: "must be a power of two and at least 16",
		})
	}

	if config.BTreeOrder < 4 {
		errs = append(errs, ValidationError{
			Field:   "store.btreeOrder",
			Message: "must be at least 4",
		})
	}

	return errs
}

// validateLogConfig validates logging configuration.
func validateLogConfig(config *LogConfig) []error {
	var errs []error

	// Validate log level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if config.Level != "" && !validLevels[strings.ToLower(config.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: "must be debug, info, warn, or error",
		})
	}

	// Validate log format
	if !validFormat(config.Format) {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: "must be text or json",
		})
	}

	// Validate output
	if config.Output != "" && config.Output != "stdout" && config.Output != "stderr" {
		dir := filepath.Dir(config.Output)
		if !filepath.IsAbs(config.Output) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: "must be stdout, stderr, or an absolute file path",
			})
		} else if _, err := os.Stat(dir); os.IsNotExist(err) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: fmt.Sprintf("directory %s does not exist", dir),
			})
		}
	}

	return errs
}

// validateTraceConfig validates trace output configuration.
func validateTraceConfig(config *TraceConfig) []error {
	if !validFormat(config.Format) {
		return []error{ValidationError{
			Field:   "trace.format",
			Message: "must be text or json",
		}}
	}
	return nil
}

func validFormat(format string) bool {
	switch strings.ToLower(format) {
	case "", "text", "json":
		return true
	default:
		return false
	}
}
