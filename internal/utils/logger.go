package utils

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// LoggerLevel can be changed at run time.
	LoggerLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	base = zap.NewNop()
)

// NewLogger builds the process logger and installs it for LogEvent.
func NewLogger(level string) (*zap.Logger, error) {
	if lvl, err := zapcore.ParseLevel(strings.TrimSpace(level)); err == nil {
		LoggerLevel.SetLevel(lvl)
	}
	cfg := zap.Config{
		Level:            LoggerLevel,
		Development:      false,
		Encoding:         "console",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "name",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	base = logger
	return logger, nil
}

// Logger returns the installed logger, or a no-op logger before NewLogger runs.
func Logger() *zap.Logger {
	return base
}

// ReplaceLogger installs l and returns a func that restores the previous logger.
func ReplaceLogger(l *zap.Logger) func() {
	prev := base
	base = l
	return func() { base = prev }
}

// Named returns a child logger for one module.
func Named(module string) *zap.Logger {
	return base.Named(strings.ToLower(module))
}

// LogEvent writes a standardized line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string, fields ...zap.Field) {
	fs := append([]zap.Field{
		zap.String("action", action),
		zap.String("request_id", strings.TrimSpace(requestID)),
	}, fields...)
	Named(module).Info(message, fs...)
}

// LogFailure is LogEvent at error level.
func LogFailure(requestID, module, action string, err error, fields ...zap.Field) {
	fs := append([]zap.Field{
		zap.String("action", action),
		zap.String("request_id", strings.TrimSpace(requestID)),
		zap.Error(err),
	}, fields...)
	Named(module).Error(action+" failed", fs...)
}

type requestIDKey struct{}

// ContextWithRequestID lets services log with the id of the request they serve.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
