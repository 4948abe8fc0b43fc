package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	// With returns a child Logger that always carries keysAndValues.
	With(keysAndValues ...any) Logger
	// Sync flushes any buffered log entries.
	Sync() error
}

// zapLogger wraps a *zap.SugaredLogger and implements Logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// Ensure zapLogger satisfies Logger.
var _ Logger = (*zapLogger)(nil)

// Debug logs at DebugLevel. keysAndValues are alternating key/value pairs.
func (l *zapLogger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs at InfoLevel.
func (l *zapLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs at WarnLevel.
func (l *zapLogger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs at ErrorLevel.
func (l *zapLogger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *zapLogger) With(keysAndValues ...any) Logger {
	return &zapLogger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}

// Options selects the encoder and level of a new Logger.
type Options struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string
	// Development switches to a colored console encoder. The default is
	// JSON, which is what the invocation runtime ships to its log sink.
	Development bool
}

// New builds a zap-backed Logger.
func New(opts Options) (Logger, error) {
	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.Level != "" {
		level, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	zapLog, err := cfg.Build(
		zap.AddCaller(),
		zap.AddCallerSkip(1), // skip the zapLogger frame
	)
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return FromZap(zapLog), nil
}

// FromZap wraps an existing *zap.Logger.
func FromZap(l *zap.Logger) Logger {
	return &zapLogger{sugar: l.Sugar()}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return FromZap(zap.NewNop())
}
