// Package errors provides enhanced error types with helpful context and suggestions
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Question processing errors
	ErrCodeIntentClassification ErrorCode = "INTENT_CLASSIFICATION_FAILED"
	ErrCodeSQLGeneration        ErrorCode = "SQL_GENERATION_FAILED"
	ErrCodeGuardRejection       ErrorCode = "SQL_GUARD_REJECTED"
	ErrCodeReportGeneration     ErrorCode = "REPORT_GENERATION_FAILED"
	ErrCodeNewsFetch            ErrorCode = "NEWS_FETCH_FAILED"

	// Guard rejection reasons
	ErrCodeNotSelect        ErrorCode = "QUERY_NOT_SELECT"
	ErrCodeForbiddenKeyword ErrorCode = "FORBIDDEN_KEYWORD"
	ErrCodeTableNotAllowed  ErrorCode = "TABLE_NOT_ALLOWED"

	// Database errors
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseQuery      ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeUnknownQuery       ErrorCode = "UNKNOWN_NAMED_QUERY"

	// Input validation errors
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidRegion   ErrorCode = "INVALID_REGION"

	// Cache errors
	ErrCodeCacheRead  ErrorCode = "CACHE_READ_FAILED"
	ErrCodeCacheWrite ErrorCode = "CACHE_WRITE_FAILED"
)

// EnhancedError represents an error with additional context and helpful information
type EnhancedError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.Details != "" {
		sb.WriteString(fmt.Sprintf(": %s", e.Details))
	}
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(" (cause: %v)", e.Cause))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error chain unwrapping
func (e *EnhancedError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly error message with suggestions
func (e *EnhancedError) UserMessage() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString(fmt.Sprintf("\n\nDetails: %s", e.Details))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n\nSuggestion: %s", e.Suggestion))
	}
	return sb.String()
}

// New creates a new EnhancedError
func New(code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Metadata: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with enhanced context
func Wrap(err error, code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Cause:    err,
		Metadata: make(map[string]interface{}),
	}
}

// WithDetails adds detailed information about the error
func (e *EnhancedError) WithDetails(details string) *EnhancedError {
	e.Details = details
	return e
}

// WithSuggestion adds a suggestion on how to fix the error
func (e *EnhancedError) WithSuggestion(suggestion string) *EnhancedError {
	e.Suggestion = suggestion
	return e
}

// WithMetadata adds additional metadata to the error
func (e *EnhancedError) WithMetadata(key string, value interface{}) *EnhancedError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Common error constructors with pre-configured messages

// NewIntentClassificationError creates an error for classification failures
func NewIntentClassificationError(err error, question string) *EnhancedError {
	return Wrap(err, ErrCodeIntentClassification, "Failed to classify question intent").
		WithDetails(fmt.Sprintf("Could not determine the intent of question: '%s'", question)).
		WithSuggestion("Try rephrasing the question. For example: 'Quantos casos em SP nos últimos 30 dias?' or 'Gere o relatório padrão'.")
}

// NewSQLGenerationError creates an error for SQL generation failures
func NewSQLGenerationError(err error) *EnhancedError {
	return Wrap(err, ErrCodeSQLGeneration, "Failed to generate SQL for the question").
		WithDetails("The model was unable to convert the question into a valid query").
		WithSuggestion("Try a simpler question or name the metric and region explicitly.").
		WithMetadata("retryable", true)
}

// NewNotSelectError creates an error for non-SELECT statements
func NewNotSelectError() *EnhancedError {
	return New(ErrCodeNotSelect, "Only SELECT statements are allowed").
		WithDetails("The generated statement does not start with SELECT").
		WithSuggestion("Ask a read-only question about the data.")
}

// NewForbiddenKeywordError creates an error for blacklisted keywords
func NewForbiddenKeywordError(keyword string) *EnhancedError {
	return New(ErrCodeForbiddenKeyword, "Query contains a forbidden keyword").
		WithDetails(fmt.Sprintf("The statement uses the forbidden keyword '%s'", keyword)).
		WithSuggestion("Only read-only SELECT queries over the published tables are allowed.").
		WithMetadata("keyword", keyword)
}

// NewTableNotAllowedError creates an error for out-of-allowlist tables
func NewTableNotAllowedError(table string) *EnhancedError {
	return New(ErrCodeTableNotAllowed, "Query references a table outside the allowlist").
		WithDetails(fmt.Sprintf("The statement reads from '%s', which is not a published table", table)).
		WithSuggestion("Queries may only read gold_fct_daily_uf and gold_fct_monthly_uf.").
		WithMetadata("table", table)
}

// NewInvalidRegionError creates an error for unrecognized regions
func NewInvalidRegionError(region string) *EnhancedError {
	return New(ErrCodeInvalidRegion, "Region not recognized").
		WithDetails(fmt.Sprintf("'%s' is not a Brazilian state", region)).
		WithSuggestion("Use a two-letter state code such as SP or RJ, or the full state name.").
		WithMetadata("region", region)
}

// NewUnknownQueryError creates an error for unknown named queries
func NewUnknownQueryError(name string) *EnhancedError {
	return New(ErrCodeUnknownQuery, "Named query not found").
		WithDetails(fmt.Sprintf("No whitelisted query registered under '%s'", name)).
		WithSuggestion("Use /api/v1/queries to list the available named queries.").
		WithMetadata("query_name", name)
}

// NewInvalidInputError creates an error for invalid input
func NewInvalidInputError(field string, reason string) *EnhancedError {
	return New(ErrCodeInvalidInput, "Invalid input").
		WithDetails(fmt.Sprintf("Field '%s' is invalid: %s", field, reason)).
		WithSuggestion("Check the API documentation for the expected format and try again.")
}

// NewDatabaseConnectionError creates an error for database connection failures
func NewDatabaseConnectionError(err error) *EnhancedError {
	return Wrap(err, ErrCodeDatabaseConnection, "Database connection failed").
		WithDetails("Unable to connect to the database").
		WithSuggestion("The service may be experiencing issues. Please try again in a moment.").
		WithMetadata("retryable", true)
}

// NewDatabaseQueryError creates an error for database query failures
func NewDatabaseQueryError(err error, operation string) *EnhancedError {
	return Wrap(err, ErrCodeDatabaseQuery, "Database query failed").
		WithDetails(fmt.Sprintf("Failed to execute database operation: %s", operation)).
		WithSuggestion("If the problem persists, contact support.").
		WithMetadata("retryable", true)
}

// NewReportGenerationError creates an error for report build failures
func NewReportGenerationError(err error) *EnhancedError {
	return Wrap(err, ErrCodeReportGeneration, "Failed to build the report").
		WithDetails("One or more report queries failed").
		WithSuggestion("Check database connectivity and try again.").
		WithMetadata("retryable", true)
}

// NewNewsFetchError creates an error for news provider failures
func NewNewsFetchError(err error) *EnhancedError {
	return Wrap(err, ErrCodeNewsFetch, "Failed to fetch news").
		WithDetails("The news provider did not return results").
		WithSuggestion("This is typically temporary. Try again in a moment.").
		WithMetadata("retryable", true)
}
