package telemetry

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(New("info", "json"))
}

// New builds a zap logger. format "json" gives production JSON output with
// ISO8601 timestamps under "ts"; anything else gives the development console encoder.
func New(levelStr, format string) *zap.Logger {
	level := zapcore.InfoLevel
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "" || format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.Sampling = nil
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Init replaces the process logger.
func Init(level, format string) {
	current.Store(New(level, format))
}

// SetLogger swaps the process logger and returns a func restoring the previous one.
func SetLogger(l *zap.Logger) (restore func()) {
	prev := current.Swap(l)
	return func() { current.Store(prev) }
}

func L() *zap.Logger { return current.Load() }

// Sync flushes buffered entries.
func Sync() {
	_ = current.Load().Sync()
}

func Debug(msg string, fields map[string]any) { current.Load().Debug(msg, toZapFields(fields)...) }

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) { current.Load().Info(msg, toZapFields(fields)...) }

func Warn(msg string, fields map[string]any) { current.Load().Warn(msg, toZapFields(fields)...) }

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) { current.Load().Error(msg, toZapFields(fields)...) }

func toZapFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
