// Package logging provides structured logging for the timesheet CLI and
// daemon. It wraps a zap SugaredLogger with an optional rotating log file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	defaultLogger *zap.SugaredLogger
	loggerMu      sync.RWMutex

	// Verbose reports whether debug logging is enabled.
	Verbose bool
)

func init() {
	defaultLogger = newLogger(DefaultConfig(), os.Stderr)
}

// Config holds logger configuration.
type Config struct {
	Level  string    // debug, info, warn or error
	JSON   bool      // JSON encoder instead of console
	Output io.Writer // console destination (default: stderr)

	// File enables a rotating log file in addition to Output.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig is the CLI configuration: warnings and errors on stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "warn",
		Output:     os.Stderr,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// DebugConfig returns the configuration used under --debug.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// DaemonConfig logs at info level to the given file.
func DaemonConfig(file string) Config {
	cfg := DefaultConfig()
	cfg.Level = "info"
	cfg.File = file
	return cfg
}

// Init replaces the global logger. It fails only when the log file
// directory cannot be created.
func Init(cfg Config) error {
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return err
		}
	}
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	l := newLogger(cfg, output)

	loggerMu.Lock()
	old := defaultLogger
	defaultLogger = l
	Verbose = parseLevel(cfg.Level) == zapcore.DebugLevel
	loggerMu.Unlock()

	_ = old.Sync()
	return nil
}

func newLogger(cfg Config, output io.Writer) *zap.SugaredLogger {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(output), level)}
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		// The file always gets JSON so it can be grepped by key.
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

func parseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.WarnLevel
	}
	return level
}

// Logger returns the current logger instance.
func Logger() *zap.SugaredLogger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// Sync flushes buffered log entries.
func Sync() error {
	return Logger().Sync()
}

// With returns a logger with additional key-value pairs.
func With(args ...any) *zap.SugaredLogger {
	return Logger().With(MaskArgs(args)...)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) {
	Logger().Debugw(msg, MaskArgs(args)...)
}

// Info logs at INFO level.
func Info(msg string, args ...any) {
	Logger().Infow(msg, MaskArgs(args)...)
}

// Warn logs at WARN level.
func Warn(msg string, args ...any) {
	Logger().Warnw(msg, MaskArgs(args)...)
}

// Error logs at ERROR level.
func Error(msg string, args ...any) {
	Logger().Errorw(msg, MaskArgs(args)...)
}

// Common structured logging fields.
const (
	KeyRequestID = "request_id"
	KeyOperation = "op"
	KeyDuration  = "duration_ms"
	KeyError     = "error"
	KeyEntry     = "entry"
	KeyClient    = "client"
	KeyTimezone  = "timezone"
	KeyEmployee  = "employee"
	KeyStatus    = "status"
	KeyCount     = "count"
	KeyAttempt   = "attempt"
)

// LogOperation logs how long an operation took.
// Usage: defer LogOperation("push", time.Now())
func LogOperation(op string, start time.Time, args ...any) {
	allArgs := append([]any{KeyOperation, op, KeyDuration, time.Since(start).Milliseconds()}, args...)
	Debug("operation", allArgs...)
}
