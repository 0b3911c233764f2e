package domain

import (
	"errors"
	"fmt"
)

// ValidationKind classifies a rejected form submission.
type ValidationKind string

const (
	MissingField   ValidationKind = "MissingField"
	InvalidFormat  ValidationKind = "InvalidFormat"
	TooManyEntries ValidationKind = "TooManyEntries"
)

// ValidationError is raised by the normalizer and names the offending field.
// It is always recoverable by re-submitting corrected input.
type ValidationError struct {
	Kind    ValidationKind `json:"kind"`
	Field   string         `json:"field"`
	Message string         `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Field)
}

func NewValidationError(kind ValidationKind, field, message string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: message}
}

// ExportKind classifies a failed PDF export.
type ExportKind string

const (
	ContentOverflow ExportKind = "ContentOverflow"
	RenderFailure   ExportKind = "RenderFailure"
)

// ExportError is raised by the document exporter. Callers surface it as a
// generic "could not generate document" message.
type ExportError struct {
	Kind  ExportKind
	Cause error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("export %s", e.Kind)
}

func (e *ExportError) Unwrap() error { return e.Cause }

func NewExportError(kind ExportKind, cause error) *ExportError {
	return &ExportError{Kind: kind, Cause: cause}
}

// EnhanceKind classifies a failure of a remote enhancer.
type EnhanceKind string

const ServiceUnavailable EnhanceKind = "ServiceUnavailable"

// EnhanceError only comes out of the remote enhancer. The heuristic enhancer
// never fails for string input.
type EnhanceError struct {
	Kind  EnhanceKind
	Cause error
}

func (e *EnhanceError) Error() string {
	return fmt.Sprintf("enhance %s: %v", e.Kind, e.Cause)
}

func (e *EnhanceError) Unwrap() error { return e.Cause }

// AsValidation reports whether err carries a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsExport reports whether err carries an ExportError.
func AsExport(err error) (*ExportError, bool) {
	var ee *ExportError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
