package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrorHandler provides centralized error logging for the CLI. Handled
// errors are appended to a JSON-lines log under the config directory so a
// failed administrative run can be reviewed after the fact.
type ErrorHandler struct {
	logFile  *os.File
	errorLog []ErrorLogEntry
	mu       sync.Mutex
	config   ErrorHandlerConfig
}

// ErrorHandlerConfig configures the error handler
type ErrorHandlerConfig struct {
	LogToFile     bool
	LogFilePath   string
	MaxLogEntries int
}

// ErrorLogEntry represents a logged error
type ErrorLogEntry struct {
	Timestamp   time.Time              `json:"timestamp"`
	Code        ErrorCode              `json:"code"`
	Severity    ErrorSeverity          `json:"severity"`
	Message     string                 `json:"message"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// DefaultErrorHandlerConfig returns default configuration
func DefaultErrorHandlerConfig() ErrorHandlerConfig {
	homeDir, _ := os.UserHomeDir()
	return ErrorHandlerConfig{
		LogToFile:     true,
		LogFilePath:   filepath.Join(homeDir, ".frostline", "errors.log"),
		MaxLogEntries: 1000,
	}
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(config ErrorHandlerConfig) (*ErrorHandler, error) {
	handler := &ErrorHandler{
		config:   config,
		errorLog: make([]ErrorLogEntry, 0),
	}

	if config.LogToFile {
		logDir := filepath.Dir(config.LogFilePath)
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(config.LogFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		handler.logFile = file
	}

	return handler, nil
}

// Handle records an error. Plain errors are wrapped as internal errors
// before logging so every entry carries a code and severity.
func (h *ErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	appErr, ok := err.(*AppError)
	if !ok {
		appErr = Wrap(err, ErrCodeInternal, err.Error())
	}

	entry := ErrorLogEntry{
		Timestamp:   appErr.Timestamp,
		Code:        appErr.Code,
		Severity:    appErr.Severity,
		Message:     appErr.Message,
		Context:     appErr.Context,
		Recoverable: appErr.Recoverable,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.errorLog = append(h.errorLog, entry)
	if len(h.errorLog) > h.config.MaxLogEntries {
		h.errorLog = h.errorLog[len(h.errorLog)-h.config.MaxLogEntries:]
	}

	if h.logFile != nil {
		if data, err := json.Marshal(entry); err == nil {
			fmt.Fprintln(h.logFile, string(data))
		}
	}
}

// RecentErrors returns the in-memory error log, newest last
func (h *ErrorHandler) RecentErrors() []ErrorLogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]ErrorLogEntry, len(h.errorLog))
	copy(out, h.errorLog)
	return out
}

// Close releases the log file
func (h *ErrorHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.logFile != nil {
		err := h.logFile.Close()
		h.logFile = nil
		return err
	}
	return nil
}

var (
	globalHandler     *ErrorHandler
	globalHandlerOnce sync.Once
)

// GetGlobalErrorHandler returns the shared error handler, creating it on
// first use. Falls back to an in-memory handler if the log file cannot be
// opened.
func GetGlobalErrorHandler() *ErrorHandler {
	globalHandlerOnce.Do(func() {
		handler, err := NewErrorHandler(DefaultErrorHandlerConfig())
		if err != nil {
			handler, _ = NewErrorHandler(ErrorHandlerConfig{LogToFile: false, MaxLogEntries: 100})
		}
		globalHandler = handler
	})
	return globalHandler
}
