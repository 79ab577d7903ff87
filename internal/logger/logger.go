// Package logger defines the logging interface used by histcheck and its
// console, rotating-file and fan-out implementations.
package logger

// Logger defines the interface for logging operations across histcheck.
type Logger interface {
	// Debug logs a debug-level message with optional key/value fields.
	Debug(msg string, fields ...interface{})

	// Info logs an info-level message with optional key/value fields.
	Info(msg string, fields ...interface{})

	// Warn logs a warning-level message with optional key/value fields.
	Warn(msg string, fields ...interface{})

	// Error logs an error-level message with the error and optional fields.
	Error(msg string, err error, fields ...interface{})
}

// Closeable is implemented by loggers that hold resources.
type Closeable interface {
	Close() error
}

// NoOpLogger discards all messages.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...interface{})        {}
func (NoOpLogger) Info(string, ...interface{})         {}
func (NoOpLogger) Warn(string, ...interface{})         {}
func (NoOpLogger) Error(string, error, ...interface{}) {}

var _ Logger = NoOpLogger{}
