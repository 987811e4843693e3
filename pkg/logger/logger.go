package logger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	instance *zap.Logger
	mu       sync.RWMutex
	once     sync.Once
)

// Init initializes the logger for the given environment. An optional level
// ("debug", "info", "warn", "error") overrides the environment default.
func Init(env string, level ...string) {
	once.Do(func() {
		var config zap.Config

		switch env {
		case "production":
			config = zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		case "development":
			config = zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		case "test":
			SetLogger(zap.NewNop())
			return
		default:
			config = zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}

		if len(level) > 0 && level[0] != "" {
			var lvl zapcore.Level
			if err := lvl.UnmarshalText([]byte(level[0])); err == nil {
				config.Level = zap.NewAtomicLevelAt(lvl)
			}
		}

		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}

		built, err := config.Build()
		if err != nil {
			panic(err)
		}
		SetLogger(built)
	})
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	instance = l
	mu.Unlock()
}

// GetLogger returns the logger instance
func GetLogger() *zap.Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l == nil {
		Init("development")
		mu.RLock()
		l = instance
		mu.RUnlock()
	}
	return l
}

func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// WithFields creates a logger with additional fields
func WithFields(fields ...zap.Field) *zap.Logger {
	return GetLogger().With(fields...)
}

// Sync flushes any buffered log entries
func Sync() {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		_ = l.Sync()
	}
}

// Close closes the logger
func Close() {
	Sync()
}

// Custom field constructors
func String(key, value string) zap.Field {
	return zap.String(key, value)
}

func Int(key string, value int) zap.Field {
	return zap.Int(key, value)
}

func Bool(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}

func Any(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

func ErrorField(err error) zap.Field {
	return zap.Error(err)
}

func Duration(key string, value time.Duration) zap.Field {
	return zap.Duration(key, value)
}

// Queue record fields
func RecordID(id string) zap.Field {
	return zap.String("record_id", id)
}

func Tag(tag string) zap.Field {
	return zap.String("tag", tag)
}

type traceKey struct{}

// ContextWithTraceID attaches the request trace id to ctx.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceIDFrom returns the trace id carried by ctx, or "".
func TraceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// TraceID is the trace_id field for ctx.
func TraceID(ctx context.Context) zap.Field {
	return zap.String("trace_id", TraceIDFrom(ctx))
}
