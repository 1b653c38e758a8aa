// Package logger provides process-wide structured logging backed by zap.
//
// Info, Warn and Error messages are always written. Debug messages and
// section headers are only written when verbose mode is enabled via the
// --verbose flag, to help operators follow the indexing and answer pipeline.
package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	format            = FormatConsole
	output  io.Writer = os.Stderr
	level             = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base              = build()
)

func build() *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if format == FormatJSON {
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(output)), level)
	return zap.New(core)
}

// SetVerbose enables or disables debug logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = build()
}

// SetFormat selects console or JSON encoding. Unknown formats fall back to console.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if f != FormatJSON {
		f = FormatConsole
	}
	format = f
	base = build()
}

// Configure applies environment settings. Development environments get
// console output, everything else JSON. levelName accepts zap level names
// ("debug", "info", "warn", "error"); an empty or unknown name keeps the
// current level.
func Configure(env, levelName string) {
	if env == "development" {
		SetFormat(FormatConsole)
	} else {
		SetFormat(FormatJSON)
	}

	if levelName == "" {
		return
	}
	lvl, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	level.SetLevel(lvl)
	verbose = lvl <= zapcore.DebugLevel
}

// With returns a child logger carrying the given fields.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// L returns the underlying structured logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Named returns a child logger tagged with a component name.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}

// Debug logs a message if verbose mode is enabled.
func Debug(msg string, args ...any) {
	L().Sugar().Debugf(msg, args...)
}

// Section logs a section header if verbose mode is enabled.
func Section(name string) {
	L().Debug("=== " + name + " ===")
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	L().Sugar().Infof(msg, args...)
}

// Warn logs a warning.
func Warn(msg string, args ...any) {
	L().Sugar().Warnf(msg, args...)
}

// Error logs an error.
func Error(msg string, args ...any) {
	L().Sugar().Errorf(msg, args...)
}
