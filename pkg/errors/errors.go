// Package errors defines custom error types and error handling utilities for the AEWIS risk service.
// This package provides structured error types that map domain failures to stable codes and HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode is the stable, machine-readable error identifier returned to clients.
type ErrorCode string

const (
	CodeInvalidRequest   ErrorCode = "invalid_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeNotFound         ErrorCode = "not_found"
	CodeNoMatch          ErrorCode = "no_match"
	CodeConflict         ErrorCode = "conflict"
	CodeRateLimited      ErrorCode = "rate_limit_exceeded"
	CodeInternal         ErrorCode = "internal_error"
	CodeUnavailable      ErrorCode = "service_unavailable"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the stable error code
	Code() ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AppError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

func (e *baseError) Code() ErrorCode {
	return e.code
}

func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

func (e *baseError) Description() string {
	return e.description
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// Is matches any AppError carrying the same code, so sentinels work with errors.Is.
func (e *baseError) Is(target error) bool {
	t, ok := target.(*baseError)
	if !ok {
		return false
	}
	return t.code == e.code
}

func (e *baseError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new AppError with the specified parameters
func NewError(code ErrorCode, httpStatus int, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Sentinels
// ================================================================================

// Sentinels are compared by code through errors.Is; never attach metadata to them.
var (
	ErrDatabaseOperation = NewError(CodeInternal, http.StatusInternalServerError, "database operation failed", "database operation failed")
	ErrNotFound          = NewError(CodeNotFound, http.StatusNotFound, "resource not found", "resource not found")
	ErrNoMatch           = NewError(CodeNoMatch, http.StatusNotFound, "no matching records", "no matching records")
	ErrCacheMiss         = NewError(CodeNotFound, http.StatusNotFound, "cache miss", "cache miss")
)

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) AppError {
	return NewError(
		CodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter, includes an invalid parameter value, or is otherwise malformed.",
		message,
	)
}

// ErrValidation creates a validation_failed error
func ErrValidation(message string) AppError {
	return NewError(
		CodeValidationFailed,
		http.StatusBadRequest,
		"The submitted data failed validation.",
		message,
	)
}

// ErrInternal creates an internal_error error
func ErrInternal(message string) AppError {
	return NewError(
		CodeInternal,
		http.StatusInternalServerError,
		"The server encountered an unexpected condition that prevented it from fulfilling the request.",
		message,
	)
}

// ErrUnavailable creates a service_unavailable error
func ErrUnavailable(message string) AppError {
	return NewError(
		CodeUnavailable,
		http.StatusServiceUnavailable,
		"The service is temporarily unable to handle the request.",
		message,
	)
}

// ================================================================================
// Domain-Specific Error Constructors
// ================================================================================

// ErrNoData signals that a tenant has no observations on record
func ErrNoData(collegeID string) AppError {
	return NewError(
		CodeNotFound,
		http.StatusNotFound,
		"College not found or no data",
		"College not found or no data",
	).WithMetadata("college_id", collegeID)
}

// ErrNoMatchingStudents signals that none of the requested students exist in the tenant
func ErrNoMatchingStudents(collegeID string) AppError {
	return NewError(
		CodeNoMatch,
		http.StatusNotFound,
		"No matching students found",
		"No matching students found",
	).WithMetadata("college_id", collegeID)
}

// ErrCSVRequired rejects uploads that are not CSV files
func ErrCSVRequired() AppError {
	return ErrInvalidRequest("CSV file required")
}

// ErrInvalidCSV wraps a CSV decoding failure
func ErrInvalidCSV(reason string) AppError {
	return ErrValidation(fmt.Sprintf("Invalid CSV: %s", reason)).
		WithMetadata("reason", reason)
}

// ErrMissingColumn rejects CSV input lacking a required column
func ErrMissingColumn(column string) AppError {
	return ErrValidation(fmt.Sprintf("Missing column: %s", column)).
		WithMetadata("column", column)
}

// ErrInvalidCell rejects a CSV cell that is not numeric
func ErrInvalidCell(row int, column, value string) AppError {
	return ErrValidation(fmt.Sprintf("Invalid CSV: row %d column %s has non-numeric value %q", row, column, value)).
		WithMetadata("row", row).
		WithMetadata("column", column)
}

// ErrRateLimitExceeded creates a rate limit exceeded error
func ErrRateLimitExceeded(scope string, limit int) AppError {
	return NewError(
		CodeRateLimited,
		http.StatusTooManyRequests,
		"Rate limit exceeded. Please try again later.",
		fmt.Sprintf("Rate limit exceeded for scope '%s': %d requests", scope, limit),
	).WithMetadata("scope", scope).
		WithMetadata("limit", limit)
}

// ErrDuplicateRequest rejects a replayed idempotency key
func ErrDuplicateRequest(key string) AppError {
	return NewError(
		CodeConflict,
		http.StatusConflict,
		"This request has already been processed.",
		fmt.Sprintf("Idempotency key already used: %s", key),
	)
}

// ErrMissingRequiredParameter creates a missing required parameter error
func ErrMissingRequiredParameter(paramName string) AppError {
	return ErrInvalidRequest(fmt.Sprintf("Missing required parameter: %s", paramName)).
		WithMetadata("parameter", paramName)
}

// ErrDatabaseConnectionFailed creates a database connection failed error
func ErrDatabaseConnectionFailed(reason string) AppError {
	return ErrInternal(fmt.Sprintf("Failed to connect to database: %s", reason)).
		WithMetadata("reason", reason)
}

// ErrCacheConnectionFailed creates a cache connection failed error
func ErrCacheConnectionFailed(reason string) AppError {
	return ErrInternal(fmt.Sprintf("Failed to connect to cache: %s", reason)).
		WithMetadata("reason", reason)
}

// ================================================================================
// Error Validation Utilities
// ================================================================================

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// WrapError wraps a generic error into an AppError
func WrapError(err error, code ErrorCode, message string) AppError {
	var httpStatus int

	switch code {
	case CodeInvalidRequest, CodeValidationFailed:
		httpStatus = http.StatusBadRequest
	case CodeNotFound, CodeNoMatch:
		httpStatus = http.StatusNotFound
	case CodeConflict:
		httpStatus = http.StatusConflict
	case CodeRateLimited:
		httpStatus = http.StatusTooManyRequests
	case CodeUnavailable:
		httpStatus = http.StatusServiceUnavailable
	default:
		httpStatus = http.StatusInternalServerError
	}

	return NewError(code, httpStatus, err.Error(), message).WithCause(err)
}

// IsNotFound reports whether err carries the not_found code.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// IsNoMatch reports whether err carries the no_match code.
func IsNoMatch(err error) bool {
	return stderrors.Is(err, ErrNoMatch)
}

// ShouldLogError determines if an error should be logged at error severity
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		status := appErr.HTTPStatus()
		return status >= 500
	}
	return true
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse is the JSON body for error responses. Detail mirrors ErrorDescription
// for dashboards that read the `detail` field.
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Detail           string                 `json:"detail"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts an AppError to an ErrorResponse
func ToErrorResponse(err AppError) *ErrorResponse {
	return &ErrorResponse{
		Error:            string(err.Code()),
		ErrorDescription: err.Error(),
		Detail:           err.Error(),
		Metadata:         err.Metadata(),
	}
}

// ToGenericErrorResponse converts any error to an ErrorResponse
func ToGenericErrorResponse(err error) *ErrorResponse {
	if appErr, ok := AsAppError(err); ok {
		return ToErrorResponse(appErr)
	}

	return &ErrorResponse{
		Error:            string(CodeInternal),
		ErrorDescription: "An unexpected error occurred",
		Detail:           "An unexpected error occurred",
	}
}

// StatusOf returns the HTTP status an error should be reported with.
func StatusOf(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

//Personal.AI order the ending
