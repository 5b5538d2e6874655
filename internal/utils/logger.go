package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger is the process logger. When backed by a file it can be reopened
// after an external rotation.
type Logger struct {
	*slog.Logger
	out *fileWriter
}

// NewLogger creates a slog logger at the given level and format ("text" or
// "json"). An empty path logs to stderr.
func NewLogger(level, format, path string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var (
		w  io.Writer = os.Stderr
		fw *fileWriter
	)
	if path != "" {
		fw, err = openFileWriter(path)
		if err != nil {
			return nil, err
		}
		w = fw
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	default:
		if fw != nil {
			fw.Close()
		}
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return &Logger{Logger: slog.New(h), out: fw}, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Reopen reopens the log file, picking up a file moved away by logrotate.
// It is a no-op for stderr loggers.
func (l *Logger) Reopen() error {
	if l.out == nil {
		return nil
	}
	return l.out.reopen()
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.out == nil {
		return nil
	}
	return l.out.Close()
}

type fileWriter struct {
	mu   sync.Mutex
	path string
	file *os.File
}

func openFileWriter(path string) (*fileWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &fileWriter{path: path, file: f}, nil
}

func (w *fileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Write(p)
}

func (w *fileWriter) reopen() error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("failed to reopen log file: %w", err)
	}
	w.mu.Lock()
	old := w.file
	w.file = f
	w.mu.Unlock()
	return old.Close()
}

func (w *fileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
