package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	var errs []ValidationError

	required := []struct {
		field string
		value string
	}{
		{"inputs.debug_info", c.Inputs.DebugInfo},
		{"inputs.debug_ranges", c.Inputs.DebugRanges},
		{"image.path", c.Image.Path},
		{"image.uuid", c.Image.UUID},
		{"image.arch", c.Image.Arch},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, ValidationError{Field: r.field, Message: "is required"})
		}
	}

	if c.Inputs.MaxSize < 0 {
		errs = append(errs, ValidationError{Field: "inputs.max_size", Message: "must not be negative"})
	}

	switch c.Output.Format {
	case FormatJSON, FormatTable, FormatCSV:
	default:
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Message: fmt.Sprintf("unsupported format %q, must be one of: json, table, csv", c.Output.Format),
		})
	}

	if c.Demangle.Swift && c.Demangle.SwiftBin == "" {
		errs = append(errs, ValidationError{Field: "demangle.swift_bin", Message: "is required when swift demangling is enabled"})
	}
	switch c.Demangle.ItaniumMode {
	case "", "none", "simplified", "templates", "full":
	default:
		errs = append(errs, ValidationError{
			Field:   "demangle.itanium_mode",
			Message: fmt.Sprintf("unsupported mode %q, must be one of: none, simplified, templates, full", c.Demangle.ItaniumMode),
		})
	}
	if c.Demangle.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "demangle.timeout", Message: "must not be negative"})
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{Field: "log.level", Message: err.Error()})
	}
	switch c.Log.Format {
	case LogFormatAuto, LogFormatConsole, LogFormatJSON:
	default:
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("unsupported format %q, must be one of: auto, console, json", c.Log.Format),
		})
	}

	if len(errs) > 0 {
		return &MultiValidationError{Errors: errs}
	}
	return nil
}
