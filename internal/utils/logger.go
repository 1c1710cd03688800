// internal/utils/logger.go

package utils

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface for logging throughout the application.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

var (
	baseMu  sync.RWMutex
	baseZap = newZap("info", "console")
)

// ConfigureLogging replaces the process-wide zap core. Loggers from
// NewLogger and NewComponentLogger resolve the core on every call, so
// package-level component loggers pick up the change too.
func ConfigureLogging(level, format string) {
	l := newZap(level, format)
	baseMu.Lock()
	baseZap = l
	baseMu.Unlock()
}

// NewLogger returns a logger on the process-wide zap core.
func NewLogger() Logger {
	return &zapLogger{}
}

// NewComponentLogger returns a logger tagged with the component name.
func NewComponentLogger(component string) Logger {
	return NewLogger().WithField("component", component)
}

// NewNopLogger discards everything. Handy in tests.
func NewNopLogger() Logger {
	return &zapLogger{base: zap.NewNop()}
}

// NewZapLogger adapts an existing zap logger.
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLogger{base: l}
}

type zapLogger struct {
	base   *zap.Logger // nil: process-wide core
	fields []interface{}
}

func (l *zapLogger) sugar() *zap.SugaredLogger {
	base := l.base
	if base == nil {
		baseMu.RLock()
		base = baseZap
		baseMu.RUnlock()
	}
	return base.Sugar().With(l.fields...)
}

func (l *zapLogger) Debug(msg string) { l.sugar().Debug(msg) }

func (l *zapLogger) Debugf(format string, args ...interface{}) { l.sugar().Debugf(format, args...) }

func (l *zapLogger) Info(msg string) { l.sugar().Info(msg) }

func (l *zapLogger) Infof(format string, args ...interface{}) { l.sugar().Infof(format, args...) }

func (l *zapLogger) Warn(msg string) { l.sugar().Warn(msg) }

func (l *zapLogger) Warnf(format string, args ...interface{}) { l.sugar().Warnf(format, args...) }

func (l *zapLogger) Error(msg string) { l.sugar().Error(msg) }

func (l *zapLogger) Errorf(format string, args ...interface{}) { l.sugar().Errorf(format, args...) }

func (l *zapLogger) WithField(key string, value interface{}) Logger {
	return l.with(key, value)
}

func (l *zapLogger) WithFields(fields map[string]interface{}) Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return l.with(args...)
}

func (l *zapLogger) with(kv ...interface{}) Logger {
	fields := make([]interface{}, 0, len(l.fields)+len(kv))
	fields = append(fields, l.fields...)
	fields = append(fields, kv...)
	return &zapLogger{base: l.base, fields: fields}
}

func newZap(level, format string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if strings.ToLower(format) == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), parseLevel(level))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
