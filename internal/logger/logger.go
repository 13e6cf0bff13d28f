// Package logger provides levelled logging to stdout and an optional
// rotated log file.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the severity of a log message.
type Level string

const (
	Debug Level = "DEBUG"
	Info  Level = "INFO"
	Warn  Level = "WARN"
	Error Level = "ERROR"
)

var (
	mu         sync.Mutex
	minLevel   = Info
	fileLogger *lumberjack.Logger
	now        = time.Now
)

func init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0) // we write our own timestamp
}

func priority(l Level) int {
	switch l {
	case Debug:
		return 0
	case Info:
		return 1
	case Warn:
		return 2
	case Error:
		return 3
	default:
		return 1
	}
}

// ParseLevel maps "debug", "info", "warn" or "error" (any case) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info", "":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	}
	return Info, fmt.Errorf("unknown log level %q", s)
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// CurrentLevel returns the minimum level that is written.
func CurrentLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return minLevel
}

// Init additionally writes to file, rotated by size. An empty path keeps
// stdout only.
func Init(file string) error {
	if file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	fileLogger = &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, fileLogger))
	return nil
}

// SetOutput replaces the destination. Used by tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Close flushes and closes the log file, if any, and reverts to stdout.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(os.Stdout)
	if fileLogger == nil {
		return nil
	}
	err := fileLogger.Close()
	fileLogger = nil
	return err
}

// Logf writes a message at the given level.
// Format: timestamp [LEVEL] message
func Logf(level Level, format string, v ...interface{}) {
	if priority(level) < priority(CurrentLevel()) {
		return
	}
	log.Printf("%s [%s] %s", now().UTC().Format(time.RFC3339), level, fmt.Sprintf(format, v...))
}

// Debugf logs at DEBUG level.
func Debugf(format string, v ...interface{}) { Logf(Debug, format, v...) }

// Infof logs at INFO level.
func Infof(format string, v ...interface{}) { Logf(Info, format, v...) }

// Warnf logs at WARN level.
func Warnf(format string, v ...interface{}) { Logf(Warn, format, v...) }

// Errorf logs at ERROR level.
func Errorf(format string, v ...interface{}) { Logf(Error, format, v...) }
