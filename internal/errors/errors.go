package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures raised by the payroll audit core
type ErrorType string

const (
	ErrorTypeSchema     ErrorType = "schema"
	ErrorTypeModelFit   ErrorType = "model_fit"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeNotLoaded  ErrorType = "not_loaded"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Column  string         `json:"column,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewSchemaError reports a required column that is entirely absent from the input table.
func NewSchemaError(column string) *AppError {
	return &AppError{
		Type:    ErrorTypeSchema,
		Code:    "MISSING_COLUMN",
		Message: fmt.Sprintf("dataset invalid: required column %q is missing", column),
		Column:  column,
	}
}

func NewModelFitError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeModelFit,
		Code:    "MODEL_FIT_FAILED",
		Message: message,
	}
}

func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

func NewDatabaseError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Code:    "DATABASE_ERROR",
		Message: message,
	}
}

// ErrDatasetNotLoaded is returned by queries issued before any dataset was ingested.
var ErrDatasetNotLoaded = &AppError{
	Type:    ErrorTypeNotLoaded,
	Code:    "DATASET_NOT_LOADED",
	Message: "no payroll dataset has been loaded; run load-payroll-dataset first",
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

func IsSchemaError(err error) bool {
	return IsType(err, ErrorTypeSchema)
}

func IsModelFitError(err error) bool {
	return IsType(err, ErrorTypeModelFit)
}

// MissingColumn returns the column named by a schema error, if any.
func MissingColumn(err error) (string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Type == ErrorTypeSchema {
		return appErr.Column, true
	}
	return "", false
}
