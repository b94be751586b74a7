package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (1xxx)
	ErrCodeConnectionFailed     ErrorCode = "FRL1001"
	ErrCodeConnectionTimeout    ErrorCode = "FRL1002"
	ErrCodeAuthenticationFailed ErrorCode = "FRL1003"
	ErrCodeNetworkUnavailable   ErrorCode = "FRL1004"

	// Configuration errors (2xxx)
	ErrCodeConfigNotFound   ErrorCode = "FRL2001"
	ErrCodeConfigInvalid    ErrorCode = "FRL2002"
	ErrCodeConfigMissing    ErrorCode = "FRL2003"
	ErrCodeConfigPermission ErrorCode = "FRL2004"

	// Statement execution errors (3xxx)
	ErrCodeSQLSyntax         ErrorCode = "FRL3001"
	ErrCodeSQLPermission     ErrorCode = "FRL3002"
	ErrCodeSQLTimeout        ErrorCode = "FRL3003"
	ErrCodeSQLObjectNotFound ErrorCode = "FRL3004"
	ErrCodeSQLExecution      ErrorCode = "FRL3005"
	ErrCodeNoResults         ErrorCode = "FRL3006"

	// Platform administration errors (4xxx)
	ErrCodeFeatureNotEnabled  ErrorCode = "FRL4001"
	ErrCodeInvalidObjectState ErrorCode = "FRL4002"
	ErrCodeObjectExists       ErrorCode = "FRL4003"

	// Validation errors (5xxx)
	ErrCodeValidationFailed ErrorCode = "FRL5001"
	ErrCodeInvalidInput     ErrorCode = "FRL5002"
	ErrCodeRequiredField    ErrorCode = "FRL5003"

	// Security errors (6xxx)
	ErrCodeSecurityViolation ErrorCode = "FRL6001"
	ErrCodeEncryptionFailed  ErrorCode = "FRL6002"

	// System errors (9xxx)
	ErrCodeInternal           ErrorCode = "FRL9001"
	ErrCodeTimeout            ErrorCode = "FRL9002"
	ErrCodeResourceExhausted  ErrorCode = "FRL9003"
	ErrCodeServiceUnavailable ErrorCode = "FRL9004"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, requires immediate attention
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed, but system continues
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with issues
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Recoverable bool
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Severity:    SeverityError,
		Context:     make(map[string]interface{}),
		Stack:       captureStack(),
		Timestamp:   time.Now(),
		Recoverable: false,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit its context
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AsRecoverable marks the error as recoverable
func (e *AppError) AsRecoverable() *AppError {
	e.Recoverable = true
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// ConnectionError creates a connection-related error
func ConnectionError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeConnectionFailed, message).
		WithSeverity(SeverityError).
		WithSuggestions(
			"Check your network connection",
			"Verify the Snowflake endpoint is accessible",
			"Check firewall settings",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Run 'frostline setup' to reconfigure",
		)
}

// SQLError creates a statement execution error
func SQLError(message string, statement string, cause error) *AppError {
	err := Wrap(cause, ErrCodeSQLExecution, message).
		WithContext("statement", truncateString(statement, 200))

	if cause != nil {
		err.Code = ClassifyStatementError(cause)
	}

	switch err.Code {
	case ErrCodeSQLPermission:
		_ = err.WithSuggestions(
			"Verify the active role has the required privileges",
			"Warehouse and resource monitor DDL typically needs ACCOUNTADMIN or a delegated role",
		)
	case ErrCodeSQLTimeout:
		_ = err.WithSuggestions(
			"Increase STATEMENT_TIMEOUT_IN_SECONDS on the warehouse or account",
			"Check the warehouse size against the workload",
		)
	case ErrCodeFeatureNotEnabled:
		_ = err.WithSuggestions(
			"Multi-cluster warehouses require Enterprise edition or higher",
			"Retry with MIN_CLUSTER_COUNT and MAX_CLUSTER_COUNT both set to 1",
		)
	case ErrCodeInvalidObjectState:
		_ = err.WithSuggestions(
			"The object is already in the requested state; no action is required",
		)
	}

	return err
}

// ValidationError creates a validation error
func ValidationError(field string, value interface{}, reason string) *AppError {
	return New(ErrCodeValidationFailed, fmt.Sprintf("Validation failed for %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("value", value).
		WithSeverity(SeverityWarning).
		AsRecoverable()
}

// ClassifyStatementError maps a raw Snowflake error onto an ErrorCode by
// inspecting the message. Snowflake does not expose structured error kinds
// through database/sql, so substring matching is the reliable surface.
func ClassifyStatementError(err error) ErrorCode {
	if err == nil {
		return ErrCodeInternal
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "unsupported feature"),
		strings.Contains(msg, "not enabled on this account"),
		strings.Contains(msg, "not supported for your account"):
		return ErrCodeFeatureNotEnabled
	case strings.Contains(msg, "invalid state"),
		strings.Contains(msg, "cannot be suspended"),
		strings.Contains(msg, "cannot be resumed"):
		return ErrCodeInvalidObjectState
	case strings.Contains(msg, "already exists"):
		return ErrCodeObjectExists
	case strings.Contains(msg, "does not exist"), strings.Contains(msg, "not found"):
		return ErrCodeSQLObjectNotFound
	case strings.Contains(msg, "insufficient privileges"),
		strings.Contains(msg, "not authorized"),
		strings.Contains(msg, "access denied"):
		return ErrCodeSQLPermission
	case strings.Contains(msg, "syntax error"):
		return ErrCodeSQLSyntax
	case strings.Contains(msg, "statement reached its statement or warehouse timeout"),
		strings.Contains(msg, "timeout"):
		return ErrCodeSQLTimeout
	default:
		return ErrCodeSQLExecution
	}
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsExpectedPlatformState reports whether the error is one of the two
// platform responses the walkthrough treats as informational: an
// edition-gated feature and an object already in the requested state.
func IsExpectedPlatformState(err error) bool {
	if err == nil {
		return false
	}
	code := GetErrorCode(err)
	if code == ErrCodeInternal {
		code = ClassifyStatementError(err)
	}
	return code == ErrCodeFeatureNotEnabled || code == ErrCodeInvalidObjectState
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
