// Package logging provides structured, component-tagged logging for the
// launcher. It is a thin layer over zerolog: console output is pretty-printed
// when stderr is a terminal, and an optional file sink is rotated by
// lumberjack.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Level represents the severity level of a log message.
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for general informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a string into a Level. Unknown strings map to LevelInfo.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "info", "INFO":
		return LevelInfo
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Config configures the logger.
type Config struct {
	// Level is the minimum level to output.
	Level Level

	// Console is where console output is written. Defaults to os.Stderr.
	Console io.Writer

	// ForceJSON disables the pretty console writer even on a terminal.
	ForceJSON bool

	// File is the path of the rotated log file. Empty disables the file sink.
	File string

	// Rotation limits for the file sink.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Console:    os.Stderr,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 14,
	}
}

// Logger is a leveled, structured logger. Derived loggers returned by
// WithComponent and WithField share the underlying sinks.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger from the configuration. The minimum level applies
// globally, so SetLevel on any logger affects all derived loggers.
func New(cfg Config) *Logger {
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	var w io.Writer = console
	if !cfg.ForceJSON && isTerminal(console) {
		w = zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"}
	}

	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		w = zerolog.MultiLevelWriter(w, rotated)
	}

	zerolog.SetGlobalLevel(cfg.Level.zerolog())
	zl := zerolog.New(w).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// isTerminal reports whether the writer is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// SetLevel changes the minimum level for all loggers.
func (l *Logger) SetLevel(level Level) {
	zerolog.SetGlobalLevel(level.zerolog())
}

// WithComponent returns a logger tagged with the component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// WithField returns a logger with the given field attached to every message.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// Debug logs a debug message. Arguments are formatted printf-style.
func (l *Logger) Debug(msg string, args ...any) {
	if len(args) == 0 {
		l.zl.Debug().Msg(msg)
		return
	}
	l.zl.Debug().Msgf(msg, args...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...any) {
	if len(args) == 0 {
		l.zl.Info().Msg(msg)
		return
	}
	l.zl.Info().Msgf(msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	if len(args) == 0 {
		l.zl.Warn().Msg(msg)
		return
	}
	l.zl.Warn().Msgf(msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	if len(args) == 0 {
		l.zl.Error().Msg(msg)
		return
	}
	l.zl.Error().Msgf(msg, args...)
}

// Err logs an error with the error attached as a structured field.
func (l *Logger) Err(err error, msg string) {
	l.zl.Error().Err(err).Msg(msg)
}

// Null is a logger that discards all output.
var Null = &Logger{zl: zerolog.Nop()}

// defaultLogger is the process-wide fallback logger.
var (
	defaultLogger     *Logger
	defaultLoggerOnce sync.Once
)

// Default returns the process-wide logger.
// Creates one with the default configuration on first call if not set.
func Default() *Logger {
	defaultLoggerOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = New(DefaultConfig())
		}
	})
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
// Should be called early in application startup.
func SetDefault(l *Logger) {
	defaultLogger = l
}
