package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/julianstephens/go-utils/helpers"
	goulog "github.com/julianstephens/go-utils/logger"
)

// Log file defaults
const (
	DefaultLogFileName   = "histcheck.log"
	DefaultLogMaxSize    = 50
	DefaultLogMaxBackups = 3
	DefaultLogMaxAge     = 14
)

var levels = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// ConsoleLogger writes timestamped lines to stdout, and errors to stderr.
type ConsoleLogger struct {
	minLevel string
	out      io.Writer
	err      io.Writer
}

// NewConsoleLogger creates a console logger. level is one of "debug",
// "info", "warn" or "error"; anything else means "info".
func NewConsoleLogger(level string) Logger {
	if _, ok := levels[level]; !ok {
		level = "info"
	}
	return &ConsoleLogger{minLevel: level, out: os.Stdout, err: os.Stderr}
}

func (cl *ConsoleLogger) enabled(level string) bool {
	return levels[level] >= levels[cl.minLevel]
}

func (cl *ConsoleLogger) Debug(msg string, fields ...interface{}) {
	if cl.enabled("debug") {
		cl.log("DEBUG", msg, fields...)
	}
}

func (cl *ConsoleLogger) Info(msg string, fields ...interface{}) {
	if cl.enabled("info") {
		cl.log("INFO", msg, fields...)
	}
}

func (cl *ConsoleLogger) Warn(msg string, fields ...interface{}) {
	if cl.enabled("warn") {
		cl.log("WARN", msg, fields...)
	}
}

// Error is logged regardless of level.
func (cl *ConsoleLogger) Error(msg string, err error, fields ...interface{}) {
	cl.log("ERROR", msg, append([]interface{}{"error", err}, fields...)...)
}

func (cl *ConsoleLogger) log(level string, msg string, fields ...interface{}) {
	timestamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")

	fieldStr := ""
	for i := 0; i+1 < len(fields); i += 2 {
		fieldStr += fmt.Sprintf(" %v=%v", fields[i], fields[i+1])
	}
	line := fmt.Sprintf("[%s] %s: %s%s\n", timestamp, level, msg, fieldStr)

	if level == "ERROR" {
		fmt.Fprint(cl.err, line) // nolint:errcheck
	} else {
		fmt.Fprint(cl.out, line) // nolint:errcheck
	}
}

// FileLogger writes JSON lines to a rotating file through go-utils/logger.
type FileLogger struct {
	underlying *goulog.Logger
	filePath   string
}

// NewFileLogger creates logDir if needed and logs to logDir/logFileName,
// rotating at maxFileSizeMB and keeping maxBackups compressed backups.
func NewFileLogger(logDir string, logFileName string, maxFileSizeMB int, maxBackups int) (Logger, error) {
	if err := helpers.Ensure(logDir, true); err != nil {
		return nil, errors.Wrapf(err, "logger: creating %s", logDir)
	}

	logPath := filepath.Join(logDir, logFileName)
	maxAge := DefaultLogMaxAge
	underlying := goulog.New()
	if err := underlying.SetFileOutputWithConfig(goulog.FileRotationConfig{
		Filename:   logPath,
		MaxSize:    maxFileSizeMB,
		MaxBackups: &maxBackups,
		MaxAge:     &maxAge,
		Compress:   true,
	}); err != nil {
		return nil, errors.Wrapf(err, "logger: opening %s", logPath)
	}

	return &FileLogger{underlying: underlying, filePath: logPath}, nil
}

// Path is the file being written.
func (fl *FileLogger) Path() string { return fl.filePath }

func (fl *FileLogger) Debug(msg string, fields ...interface{}) {
	fl.underlying.WithFields(fieldsToMap(fields)).Debug(msg)
}

func (fl *FileLogger) Info(msg string, fields ...interface{}) {
	fl.underlying.WithFields(fieldsToMap(fields)).Info(msg)
}

func (fl *FileLogger) Warn(msg string, fields ...interface{}) {
	fl.underlying.WithFields(fieldsToMap(fields)).Warn(msg)
}

func (fl *FileLogger) Error(msg string, err error, fields ...interface{}) {
	fl.underlying.WithFields(fieldsToMap(append([]interface{}{"error", err}, fields...))).Error(msg)
}

// Close flushes and closes the rotating log file.
func (fl *FileLogger) Close() error {
	return fl.underlying.Close()
}

func fieldsToMap(fields []interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		result[fmt.Sprintf("%v", fields[i])] = fields[i+1]
	}
	return result
}

// MultiLogger forwards every call to each of its loggers.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines loggers into one.
func NewMultiLogger(loggers ...Logger) Logger {
	return &MultiLogger{loggers: loggers}
}

func (ml *MultiLogger) Debug(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Debug(msg, fields...)
	}
}

func (ml *MultiLogger) Info(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Info(msg, fields...)
	}
}

func (ml *MultiLogger) Warn(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Warn(msg, fields...)
	}
}

func (ml *MultiLogger) Error(msg string, err error, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Error(msg, err, fields...)
	}
}

// Close closes every closeable logger and returns the first error.
func (ml *MultiLogger) Close() error {
	var first error
	for _, lg := range ml.loggers {
		if c, ok := lg.(Closeable); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
