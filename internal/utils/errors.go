// Package utils provides structured errors, logging and text helpers
// shared by the extraction and duplicate-detection packages.
package utils

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns string representation of error severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ErrorCode represents predefined error codes for categorization
type ErrorCode string

const (
	// Input errors
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidURL   ErrorCode = "INVALID_URL"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"

	// Extraction errors
	ErrCodeNoName       ErrorCode = "NO_NAME_FOUND"
	ErrCodeFetchFailed  ErrorCode = "FETCH_FAILED"
	ErrCodeParsingError ErrorCode = "PARSING_ERROR"

	// External capability errors
	ErrCodeCapabilityFailed      ErrorCode = "CAPABILITY_FAILED"
	ErrCodeCapabilityUnavailable ErrorCode = "CAPABILITY_UNAVAILABLE"
	ErrCodeMalformedResponse     ErrorCode = "MALFORMED_RESPONSE"
	ErrCodeRateLimited           ErrorCode = "RATE_LIMITED"

	// Configuration and storage
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StructuredError provides rich error information for better debugging and handling
type StructuredError struct {
	Code        ErrorCode              `json:"code"`
	Message     string                 `json:"message"`
	Severity    ErrorSeverity          `json:"severity"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Cause       error                  `json:"-"`
	Timestamp   time.Time              `json:"timestamp"`
	StackTrace  []string               `json:"stack_trace,omitempty"`
	Retryable   bool                   `json:"retryable"`
	UserMessage string                 `json:"user_message,omitempty"`
}

// Error implements the error interface
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error unwrapping
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a structured error with the same code.
func (e *StructuredError) Is(target error) bool {
	if se, ok := target.(*StructuredError); ok {
		return e.Code == se.Code
	}
	return false
}

// ErrorBuilder provides a fluent interface for creating structured errors
type ErrorBuilder struct {
	error *StructuredError
}

// StackTraceDepth is the number of frames captured by NewError.
// Zero disables capture.
var StackTraceDepth = 10

// NewError creates a new error builder
func NewError(code ErrorCode, message string) *ErrorBuilder {
	return &ErrorBuilder{
		error: &StructuredError{
			Code:       code,
			Message:    message,
			Severity:   SeverityError,
			Timestamp:  time.Now(),
			StackTrace: captureStackTrace(StackTraceDepth),
		},
	}
}

// WithSeverity sets the error severity
func (eb *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	eb.error.Severity = severity
	return eb
}

// WithCause sets the underlying cause
func (eb *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	eb.error.Cause = cause
	return eb
}

// WithContext adds contextual information
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	if eb.error.Context == nil {
		eb.error.Context = make(map[string]interface{})
	}
	eb.error.Context[key] = value
	return eb
}

// WithRetryable marks the error as retryable
func (eb *ErrorBuilder) WithRetryable(retryable bool) *ErrorBuilder {
	eb.error.Retryable = retryable
	return eb
}

// WithUserMessage sets a user-friendly message
func (eb *ErrorBuilder) WithUserMessage(message string) *ErrorBuilder {
	eb.error.UserMessage = message
	return eb
}

// WithoutStackTrace drops the captured stack trace. Used for sentinels.
func (eb *ErrorBuilder) WithoutStackTrace() *ErrorBuilder {
	eb.error.StackTrace = nil
	return eb
}

// Build returns the constructed error
func (eb *ErrorBuilder) Build() *StructuredError {
	return eb.error
}

// WrapError wraps an existing error in a structured error
func WrapError(err error, code ErrorCode, message string) *StructuredError {
	return NewError(code, message).WithCause(err).Build()
}

// CodeOf returns the code of the first structured error in err's chain,
// or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// GetUserFriendlyMessage extracts a user-friendly message from an error
func GetUserFriendlyMessage(err error) string {
	var se *StructuredError
	if !errors.As(err, &se) {
		return "An error occurred. Please try again."
	}
	if se.UserMessage != "" {
		return se.UserMessage
	}

	switch se.Code {
	case ErrCodeNoName:
		return "No product name could be found on that page."
	case ErrCodeInvalidURL, ErrCodeInvalidInput:
		return "The request is missing required information or is malformed."
	case ErrCodeFetchFailed:
		return "The product page could not be downloaded. Please try again later."
	case ErrCodeRateLimited:
		return "Too many requests. Please wait a moment before trying again."
	case ErrCodeInvalidConfig:
		return "The configuration is invalid."
	default:
		return "An unexpected error occurred. Please try again or contact support if the problem persists."
	}
}

func captureStackTrace(depth int) []string {
	if depth <= 0 {
		return nil
	}

	var stack []string
	// frame 0 is captureStackTrace, frame 1 is NewError
	for i := 2; len(stack) < depth; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		funcName := "unknown"
		if fn := runtime.FuncForPC(pc); fn != nil {
			funcName = fn.Name()
		}
		stack = append(stack, fmt.Sprintf("%s:%d (%s)", shortenFilePath(file), line, shortenFuncName(funcName)))
	}
	return stack
}

// shortenFilePath keeps only the last two path components
func shortenFilePath(filePath string) string {
	parts := strings.Split(filePath, "/")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], "/")
	}
	return filePath
}

func shortenFuncName(funcName string) string {
	parts := strings.Split(funcName, "/")
	lastPart := parts[len(parts)-1]
	if dotIndex := strings.LastIndex(lastPart, "."); dotIndex != -1 && dotIndex < len(lastPart)-1 {
		return lastPart[dotIndex+1:]
	}
	return lastPart
}
