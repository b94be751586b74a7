package errors

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestAppError(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
	}{
		{
			name: "basic error",
			err:  New(ErrCodeConnectionFailed, "Connection failed"),
		},
		{
			name: "error with suggestions",
			err: New(ErrCodeConnectionFailed, "Connection failed").
				WithSuggestions("Check network", "Verify credentials"),
		},
		{
			name: "error with context",
			err: New(ErrCodeConnectionFailed, "Connection failed").
				WithContext("account", "xy12345").
				WithContext("port", 443),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != ErrCodeConnectionFailed {
				t.Errorf("Expected code %s, got %s", ErrCodeConnectionFailed, tt.err.Code)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	baseErr := fmt.Errorf("database connection refused")

	appErr := Wrap(baseErr, ErrCodeConnectionFailed, "Failed to connect to Snowflake")

	if appErr.Cause != baseErr {
		t.Error("Wrapped error should contain original error as cause")
	}

	if appErr.Code != ErrCodeConnectionFailed {
		t.Errorf("Expected code %s, got %s", ErrCodeConnectionFailed, appErr.Code)
	}
}

func TestClassifyStatementError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{
			name:     "multi-cluster on standard edition",
			err:      fmt.Errorf("003466 (0A000): Unsupported feature 'MIN_CLUSTER_COUNT'"),
			expected: ErrCodeFeatureNotEnabled,
		},
		{
			name:     "suspend already suspended warehouse",
			err:      fmt.Errorf("000605 (57014): Invalid state. Warehouse 'DEMO_WH' cannot be suspended."),
			expected: ErrCodeInvalidObjectState,
		},
		{
			name:     "object missing",
			err:      fmt.Errorf("002003 (02000): Warehouse 'NOPE_WH' does not exist or not authorized."),
			expected: ErrCodeSQLObjectNotFound,
		},
		{
			name:     "missing privileges",
			err:      fmt.Errorf("003001 (42501): Insufficient privileges to operate on account"),
			expected: ErrCodeSQLPermission,
		},
		{
			name:     "syntax error",
			err:      fmt.Errorf("001003 (42000): syntax error line 1 at position 7"),
			expected: ErrCodeSQLSyntax,
		},
		{
			name:     "duplicate object",
			err:      fmt.Errorf("002002 (42710): Object 'DEMO_RM' already exists."),
			expected: ErrCodeObjectExists,
		},
		{
			name:     "generic failure",
			err:      fmt.Errorf("internal platform error"),
			expected: ErrCodeSQLExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := ClassifyStatementError(tt.err); code != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, code)
			}
		})
	}
}

func TestIsExpectedPlatformState(t *testing.T) {
	suspended := SQLError("suspend failed", "ALTER WAREHOUSE DEMO_WH SUSPEND",
		fmt.Errorf("Invalid state. Warehouse 'DEMO_WH' cannot be suspended."))
	if !IsExpectedPlatformState(suspended) {
		t.Error("Invalid state should be an expected platform response")
	}

	denied := SQLError("drop failed", "DROP WAREHOUSE DEMO_WH",
		fmt.Errorf("Insufficient privileges to operate on warehouse"))
	if IsExpectedPlatformState(denied) {
		t.Error("Permission errors are never expected platform responses")
	}
}

func TestRetryLogic(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	config := &RetryConfig{
		MaxRetries:   maxAttempts - 1,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       false,
		RetryableError: func(err error) bool {
			return true
		},
	}

	ctx := context.Background()

	err := Retry(ctx, config, func(ctx context.Context) error {
		attempts++
		if attempts < maxAttempts {
			return New(ErrCodeConnectionTimeout, "Timeout").AsRecoverable()
		}
		return nil
	})

	if err != nil {
		t.Error("Expected retry to succeed")
	}

	if attempts != maxAttempts {
		t.Errorf("Expected %d attempts, got %d", maxAttempts, attempts)
	}
}

func TestRetryDoesNotRetryAdminErrors(t *testing.T) {
	attempts := 0

	err := Retry(context.Background(), DefaultRetryConfig(), func(ctx context.Context) error {
		attempts++
		return New(ErrCodeInvalidObjectState, "already suspended")
	})

	if err == nil {
		t.Error("Expected error to propagate")
	}
	if attempts != 1 {
		t.Errorf("Invalid state must not be retried, got %d attempts", attempts)
	}
}

func TestCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 100*time.Millisecond)
	ctx := context.Background()

	err := cb.Execute(ctx, func() error {
		return fmt.Errorf("failure 1")
	})
	if err == nil {
		t.Error("Expected error")
	}

	err = cb.Execute(ctx, func() error {
		return fmt.Errorf("failure 2")
	})
	if err == nil {
		t.Error("Expected error")
	}

	// Circuit should be open now
	err = cb.Execute(ctx, func() error {
		return nil
	})
	if err == nil {
		t.Error("Expected circuit breaker to reject execution")
	}
	if cb.GetState() != "open" {
		t.Errorf("Expected open state, got %s", cb.GetState())
	}

	// After the reset timeout the circuit half-opens and recovers
	time.Sleep(150 * time.Millisecond)
	err = cb.Execute(ctx, func() error {
		return nil
	})
	if err != nil {
		t.Errorf("Expected half-open execution to succeed, got %v", err)
	}
	if cb.GetState() != "closed" {
		t.Errorf("Expected closed state after recovery, got %s", cb.GetState())
	}
}
