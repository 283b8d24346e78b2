package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level names accepted by the logger, as configured in logging.level.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// FileName is the log file created inside the log directory.
const FileName = "picopala.log"

var slogLevels = map[string]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// Logger writes JSON entries for one picopala process. Child loggers share
// the destination of their parent. Safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	out    *output
}

// output is the closable destination shared by a logger and its children.
type output struct {
	mu     sync.Mutex
	closer io.Closer
}

// NewLogger opens {dir}/picopala.log for appending. An empty dir yields a
// logger that discards everything. Unknown levels log at INFO.
func NewLogger(dir string, level string) (*Logger, error) {
	if dir == "" {
		return NopLogger(), nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newLogger(file, file, level), nil
}

// NewLoggerWithRotation is NewLogger over a RotatingWriter.
func NewLoggerWithRotation(dir string, level string, config RotationConfig) (*Logger, error) {
	if dir == "" {
		return NopLogger(), nil
	}

	rw, err := NewRotatingWriter(filepath.Join(dir, FileName), config)
	if err != nil {
		return nil, err
	}
	return newLogger(rw, rw, level), nil
}

// NewWriterLogger logs to w. Close leaves w open.
func NewWriterLogger(w io.Writer, level string) *Logger {
	return newLogger(w, nil, level)
}

// NopLogger discards all output.
func NopLogger() *Logger {
	return newLogger(io.Discard, nil, LevelError)
}

func newLogger(w io.Writer, closer io.Closer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevels[ParseLevel(level)]})
	return &Logger{logger: slog.New(handler), out: &output{closer: closer}}
}

// WithCommand tags entries with the CLI command path, e.g. "hook task-completed".
func (l *Logger) WithCommand(command string) *Logger {
	return l.child(slog.String("command", command))
}

// WithPlan tags entries with the plan document path.
func (l *Logger) WithPlan(path string) *Logger {
	return l.child(slog.String("plan", path))
}

// With adds alternating key-value attributes. Pairs whose key is not a
// string are dropped.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}

	attrs := make([]any, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			attrs = append(attrs, slog.Any(key, args[i+1]))
		}
	}
	return l.child(attrs...)
}

func (l *Logger) child(attrs ...any) *Logger {
	return &Logger{logger: l.logger.With(attrs...), out: l.out}
}

// Debug logs msg at DEBUG with key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs msg at INFO with key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs msg at WARN with key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs msg at ERROR with key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Close syncs and closes the log file. Loggers that own no file return nil;
// a second call is a no-op.
func (l *Logger) Close() error {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	c := l.out.closer
	if c == nil {
		return nil
	}
	l.out.closer = nil

	if s, ok := c.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil {
			_ = c.Close()
			return fmt.Errorf("failed to sync log file: %w", err)
		}
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// ParseLevel normalizes level to one of ValidLevels, falling back to
// LevelInfo.
func ParseLevel(level string) string {
	upper := strings.ToUpper(level)
	if _, ok := slogLevels[upper]; ok {
		return upper
	}
	return LevelInfo
}

// IsValidLevel reports whether level is one of ValidLevels, ignoring case.
func IsValidLevel(level string) bool {
	_, ok := slogLevels[strings.ToUpper(level)]
	return ok
}

// ValidLevels lists the level names from most to least verbose.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}
