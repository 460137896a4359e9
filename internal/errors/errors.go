// Package errors provides the typed error layer shared by all pipeline
// stages. Every error carries the stage it happened in and a stable code
// so failures can be logged, recorded and asserted on uniformly.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a pipeline error.
type Code string

const (
	CodeConfigInvalid       Code = "CONFIG_INVALID"
	CodeLoadFailed          Code = "LOAD_FAILED"
	CodeUnsupportedFormat   Code = "UNSUPPORTED_FORMAT"
	CodeMissingColumn       Code = "MISSING_COLUMN"
	CodeValidationFailed    Code = "VALIDATION_FAILED"
	CodeIntegrityViolation  Code = "INTEGRITY_VIOLATION"
	CodeCleaningFailed      Code = "CLEANING_FAILED"
	CodeAnalyticsFailed     Code = "ANALYTICS_FAILED"
	CodeExportFailed        Code = "EXPORT_FAILED"
	CodeReportFailed        Code = "REPORT_FAILED"
	CodeHistoryUnavailable  Code = "HISTORY_UNAVAILABLE"
	CodeInternal            Code = "INTERNAL"
)

// PipelineError is the structured error type used across stages.
type PipelineError struct {
	Stage   string
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Stage, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Stage, e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// New creates a PipelineError with the given stage, code and message.
func New(stage string, code Code, message string) *PipelineError {
	return &PipelineError{Stage: stage, Code: code, Message: message}
}

// Wrap creates a PipelineError wrapping an underlying error.
func Wrap(stage string, code Code, message string, err error) *PipelineError {
	return &PipelineError{Stage: stage, Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error chain, or CodeInternal when the
// chain contains no PipelineError.
func CodeOf(err error) Code {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return CodeInternal
}

// StageOf extracts the stage from an error chain, or "" when unknown.
func StageOf(err error) string {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Stage
	}
	return ""
}

// Convenience constructors for the common stage errors.

// NewLoadError creates a load-stage error.
func NewLoadError(message string, err error) *PipelineError {
	return Wrap("load", CodeLoadFailed, message, err)
}

// NewUnsupportedFormatError flags a dataset file whose extension has no parser.
func NewUnsupportedFormatError(path string) *PipelineError {
	return New("load", CodeUnsupportedFormat, fmt.Sprintf("no parser for file %s", path))
}

// NewMissingColumnError flags a dataset missing a required column.
func NewMissingColumnError(table, column string) *PipelineError {
	return New("load", CodeMissingColumn, fmt.Sprintf("table %s is missing required column %q", table, column))
}

// NewValidationError creates a validation-stage error.
func NewValidationError(message string, err error) *PipelineError {
	return Wrap("validate", CodeValidationFailed, message, err)
}

// NewIntegrityError flags a referential integrity violation beyond the
// configured tolerance.
func NewIntegrityError(message string) *PipelineError {
	return New("validate", CodeIntegrityViolation, message)
}

// NewExportError creates an export-stage error.
func NewExportError(message string, err error) *PipelineError {
	return Wrap("export", CodeExportFailed, message, err)
}

// NewReportError creates a report-stage error.
func NewReportError(message string, err error) *PipelineError {
	return Wrap("report", CodeReportFailed, message, err)
}
